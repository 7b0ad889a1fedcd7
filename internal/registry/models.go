package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// ModuleStatus is the release status of a module entry.
type ModuleStatus string

const (
	ModuleStable     ModuleStatus = "stable"
	ModuleBeta       ModuleStatus = "beta"
	ModuleDeprecated ModuleStatus = "deprecated"
)

// ParseModuleStatus validates a module status string.
func ParseModuleStatus(value string) (ModuleStatus, error) {
	switch status := ModuleStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case ModuleStable, ModuleBeta, ModuleDeprecated:
		return status, nil
	default:
		return "", fmt.Errorf("%w: module status %q (want stable, beta, or deprecated)", ErrInvalidStatus, value)
	}
}

// SchemaStatus is the release status of the database schema.
type SchemaStatus string

const (
	SchemaStable SchemaStatus = "stable"
	SchemaBeta   SchemaStatus = "beta"
)

// ParseSchemaStatus validates a schema status string.
func ParseSchemaStatus(value string) (SchemaStatus, error) {
	switch status := SchemaStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case SchemaStable, SchemaBeta:
		return status, nil
	default:
		return "", fmt.Errorf("%w: schema status %q (want stable or beta)", ErrInvalidStatus, value)
	}
}

// MigrationStatus is the lifecycle state of a migration entry.
type MigrationStatus string

const (
	MigrationPending    MigrationStatus = "pending"
	MigrationApplied    MigrationStatus = "applied"
	MigrationRolledBack MigrationStatus = "rolled_back"
)

// ParseMigrationStatus validates a migration status string. The spellings
// "rolled back" and "rolled-back" are accepted for hand-edited documents.
func ParseMigrationStatus(value string) (MigrationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch status := MigrationStatus(normalized); status {
	case MigrationPending, MigrationApplied, MigrationRolledBack:
		return status, nil
	default:
		return "", fmt.Errorf("%w: migration status %q (want pending, applied, or rolled_back)", ErrInvalidStatus, value)
	}
}

// UnmarshalJSON normalizes alternate spellings on read.
func (s *MigrationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseMigrationStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ModuleVersion is one entry of the module registry.
type ModuleVersion struct {
	Version     string       `json:"version" yaml:"version"`
	Description string       `json:"description" yaml:"description"`
	Status      ModuleStatus `json:"status" yaml:"status"`
	ReleaseDate string       `json:"releaseDate" yaml:"releaseDate"`
}

func (m ModuleVersion) validate() error {
	if err := ValidateVersion(m.Version); err != nil {
		return err
	}
	if status, err := ParseModuleStatus(string(m.Status)); err != nil {
		return err
	} else if status != m.Status {
		return fmt.Errorf("%w: module status %q is not canonical", ErrInvalidStatus, m.Status)
	}
	if _, err := ParseDate(m.ReleaseDate); err != nil {
		return fmt.Errorf("releaseDate: %w", err)
	}
	return nil
}

// ModuleRegistry is the on-disk module registry document.
type ModuleRegistry struct {
	Modules     map[string]ModuleVersion `json:"modules" yaml:"modules"`
	LastUpdated string                   `json:"lastUpdated" yaml:"lastUpdated"`
}

// SchemaVersion describes the current database schema.
type SchemaVersion struct {
	Version     string       `json:"version" yaml:"version"`
	Description string       `json:"description" yaml:"description"`
	Status      SchemaStatus `json:"status" yaml:"status"`
	ReleaseDate string       `json:"releaseDate" yaml:"releaseDate"`
}

func (s SchemaVersion) validate() error {
	if err := ValidateVersion(s.Version); err != nil {
		return err
	}
	if status, err := ParseSchemaStatus(string(s.Status)); err != nil {
		return err
	} else if status != s.Status {
		return fmt.Errorf("%w: schema status %q is not canonical", ErrInvalidStatus, s.Status)
	}
	if _, err := ParseDate(s.ReleaseDate); err != nil {
		return fmt.Errorf("releaseDate: %w", err)
	}
	return nil
}

// Migration is one entry of the append-only migration log.
type Migration struct {
	ID          string          `json:"id" yaml:"id"`
	Version     string          `json:"version" yaml:"version"`
	Description string          `json:"description" yaml:"description"`
	AppliedDate string          `json:"appliedDate" yaml:"appliedDate"`
	Status      MigrationStatus `json:"status" yaml:"status"`
}

func (m Migration) validate() error {
	if strings.TrimSpace(m.ID) == "" || m.ID != strings.TrimSpace(m.ID) {
		return fmt.Errorf("%w: migration id %q", ErrInvalidEntry, m.ID)
	}
	if err := ValidateVersion(m.Version); err != nil {
		return err
	}
	if _, err := ParseMigrationStatus(string(m.Status)); err != nil {
		return err
	}
	if m.Status == MigrationPending {
		if m.AppliedDate != "" {
			return fmt.Errorf("%w: pending migration %s has appliedDate", ErrInvalidEntry, m.ID)
		}
		return nil
	}
	if _, err := ParseDate(m.AppliedDate); err != nil {
		return fmt.Errorf("migration %s appliedDate: %w", m.ID, err)
	}
	return nil
}

// DatabaseRegistry is the on-disk database registry document.
type DatabaseRegistry struct {
	Schema      SchemaVersion `json:"schema" yaml:"schema"`
	Migrations  []Migration   `json:"migrations" yaml:"migrations"`
	LastUpdated string        `json:"lastUpdated" yaml:"lastUpdated"`
}

// ParseDate accepts YYYY-MM-DD dates and RFC 3339 timestamps.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidEntry)
	}
	if t, err := time.Parse(dateLayout, trimmed); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q (want YYYY-MM-DD)", ErrInvalidEntry, value)
}

// FormatDate renders t as a registry date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func latest(times ...time.Time) time.Time {
	var out time.Time
	for _, t := range times {
		if t.After(out) {
			out = t
		}
	}
	return out
}

// SortedModuleNames returns module names in lexical order.
func SortedModuleNames(modules map[string]ModuleVersion) []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
