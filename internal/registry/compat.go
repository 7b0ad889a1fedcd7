package registry

import "fmt"

// Compatibility is the outcome of CheckCompatibility.
type Compatibility struct {
	Compatible bool
	Warnings   []string
	Errors     []string
}

// CheckCompatibility compares registry contents against the application
// version. Modules behind the application major version, or deprecated,
// produce warnings. A schema behind the application major version is an
// error and makes the result incompatible.
func CheckCompatibility(appVersion string, modules map[string]ModuleVersion, schema SchemaVersion) (Compatibility, error) {
	result := Compatibility{Compatible: true}
	appMajor, err := MajorVersion(appVersion)
	if err != nil {
		return result, err
	}
	for _, name := range SortedModuleNames(modules) {
		entry := modules[name]
		major, err := MajorVersion(entry.Version)
		if err != nil {
			return result, fmt.Errorf("module %s: %w", name, err)
		}
		if major < appMajor {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("module %q version %s is outdated (app is %s)", name, entry.Version, appVersion))
		}
		if entry.Status == ModuleDeprecated {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("module %q is deprecated", name))
		}
	}
	if schema.Version != "" {
		major, err := MajorVersion(schema.Version)
		if err != nil {
			return result, fmt.Errorf("schema: %w", err)
		}
		if major < appMajor {
			result.Errors = append(result.Errors,
				fmt.Sprintf("database schema %s is incompatible with app %s", schema.Version, appVersion))
			result.Compatible = false
		}
	}
	return result, nil
}
