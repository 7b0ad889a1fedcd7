package registry

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ValidateVersion checks that value is a full MAJOR.MINOR.PATCH semantic
// version, optionally followed by -prerelease and +build suffixes. A leading
// "v" is not accepted; registry documents store bare versions.
func ValidateVersion(value string) error {
	if value == "" || value != strings.TrimSpace(value) {
		return fmt.Errorf("%w: %q", ErrInvalidSemver, value)
	}
	if strings.HasPrefix(value, "v") {
		return fmt.Errorf("%w: %q must not carry a v prefix", ErrInvalidSemver, value)
	}
	if !semver.IsValid("v" + value) {
		return fmt.Errorf("%w: %q", ErrInvalidSemver, value)
	}
	core := value
	if idx := strings.IndexAny(core, "-+"); idx >= 0 {
		core = core[:idx]
	}
	// x/mod accepts "v1" and "v1.2" shorthands.
	if strings.Count(core, ".") != 2 {
		return fmt.Errorf("%w: %q must have MAJOR.MINOR.PATCH", ErrInvalidSemver, value)
	}
	return nil
}

// CompareVersions orders two validated versions using semver precedence.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// MajorVersion returns the major component of a validated version.
func MajorVersion(value string) (int, error) {
	if err := ValidateVersion(value); err != nil {
		return 0, err
	}
	major, err := strconv.Atoi(strings.TrimPrefix(semver.Major("v"+value), "v"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSemver, value)
	}
	return major, nil
}
