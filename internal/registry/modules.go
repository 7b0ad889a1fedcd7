package registry

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"videomanager/internal/logging"
)

func validateModuleName(name string) error {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: module name %q", ErrInvalidEntry, name)
	}
	return nil
}

// ModulesDocument returns the full module registry, including lastUpdated.
func (s *Store) ModulesDocument(ctx context.Context) (*ModuleRegistry, error) {
	return loadDocument(ctx, s, s.modulesPath, decodeModules)
}

// LoadModules returns every module entry keyed by name.
func (s *Store) LoadModules(ctx context.Context) (map[string]ModuleVersion, error) {
	doc, err := s.ModulesDocument(ctx)
	if err != nil {
		return nil, err
	}
	return maps.Clone(doc.Modules), nil
}

// GetModule returns a single module entry.
func (s *Store) GetModule(ctx context.Context, name string) (ModuleVersion, error) {
	doc, err := s.ModulesDocument(ctx)
	if err != nil {
		return ModuleVersion{}, err
	}
	entry, ok := doc.Modules[name]
	if !ok {
		return ModuleVersion{}, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return entry, nil
}

// SetModuleVersion bumps an existing module to version and, when status is
// non-nil, changes its status. The release date becomes today. Unknown
// modules are rejected; registration goes through AddModule.
func (s *Store) SetModuleVersion(ctx context.Context, name, version string, status *ModuleStatus) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}
	var newStatus ModuleStatus
	if status != nil {
		parsed, err := ParseModuleStatus(string(*status))
		if err != nil {
			return err
		}
		newStatus = parsed
	}

	var previous ModuleVersion
	err := mutateDocument(ctx, s, s.modulesPath, decodeModules, func(doc *ModuleRegistry) error {
		entry, ok := doc.Modules[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownModule, name)
		}
		previous = entry
		entry.Version = version
		if newStatus != "" {
			entry.Status = newStatus
		}
		entry.ReleaseDate = s.today()
		doc.Modules[name] = entry
		return nil
	})
	if err != nil {
		return err
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldModule, name),
		logging.String("from", previous.Version),
		logging.String("to", version),
	}
	if CompareVersions(version, previous.Version) < 0 {
		logging.WarnWithContext(s.logger, "module version moved backwards", "module_downgrade",
			append(attrs,
				logging.String(logging.FieldErrorHint, "confirm the downgrade was intended"),
				logging.String(logging.FieldImpact, "registry now records an older release"),
			)...)
		return nil
	}
	s.logger.Info("module version updated", logging.Args(attrs...)...)
	return nil
}

// AddModule registers a new module. An empty release date defaults to today.
func (s *Store) AddModule(ctx context.Context, name string, entry ModuleVersion) error {
	if err := validateModuleName(name); err != nil {
		return err
	}
	if err := ValidateVersion(entry.Version); err != nil {
		return err
	}
	status, err := ParseModuleStatus(string(entry.Status))
	if err != nil {
		return err
	}
	entry.Status = status
	if entry.ReleaseDate == "" {
		entry.ReleaseDate = s.today()
	} else {
		if _, err := ParseDate(entry.ReleaseDate); err != nil {
			return err
		}
	}

	err = mutateDocument(ctx, s, s.modulesPath, decodeModules, func(doc *ModuleRegistry) error {
		if _, exists := doc.Modules[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
		}
		doc.Modules[name] = entry
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("module registered",
		logging.String(logging.FieldModule, name),
		logging.String("version", entry.Version),
		logging.String("status", string(entry.Status)),
	)
	return nil
}
