package registry

import (
	"context"
	"fmt"
	"slices"
	"time"

	"videomanager/internal/logging"
)

// DatabaseDocument returns the full database registry, including lastUpdated.
func (s *Store) DatabaseDocument(ctx context.Context) (*DatabaseRegistry, error) {
	return loadDocument(ctx, s, s.databasePath, decodeDatabase)
}

// LoadDatabase returns the schema version and the migration log in order.
func (s *Store) LoadDatabase(ctx context.Context) (SchemaVersion, []Migration, error) {
	doc, err := s.DatabaseDocument(ctx)
	if err != nil {
		return SchemaVersion{}, nil, err
	}
	return doc.Schema, slices.Clone(doc.Migrations), nil
}

// SetSchemaVersion records a new schema version released today. An empty
// description keeps the current one.
func (s *Store) SetSchemaVersion(ctx context.Context, version, description string, status SchemaStatus) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}
	parsed, err := ParseSchemaStatus(string(status))
	if err != nil {
		return err
	}
	var previous string
	err = mutateDocument(ctx, s, s.databasePath, decodeDatabase, func(doc *DatabaseRegistry) error {
		previous = doc.Schema.Version
		doc.Schema.Version = version
		doc.Schema.Status = parsed
		if description != "" {
			doc.Schema.Description = description
		}
		doc.Schema.ReleaseDate = s.today()
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("schema version updated",
		logging.String("from", previous),
		logging.String("to", version),
		logging.String("status", string(parsed)),
	)
	return nil
}

// AppendMigration adds entry to the end of the migration log. The id must be
// new and greater than every existing id. New entries start pending or
// applied; an applied entry without appliedDate is stamped with today.
func (s *Store) AppendMigration(ctx context.Context, entry Migration) error {
	status, err := ParseMigrationStatus(string(entry.Status))
	if err != nil {
		return err
	}
	entry.Status = status
	switch status {
	case MigrationPending:
	case MigrationApplied:
		if entry.AppliedDate == "" {
			entry.AppliedDate = s.today()
		}
	default:
		return fmt.Errorf("%w: a new migration cannot start %s", ErrInvalidTransition, status)
	}
	if err := entry.validate(); err != nil {
		return err
	}

	err = mutateDocument(ctx, s, s.databasePath, decodeDatabase, func(doc *DatabaseRegistry) error {
		for _, existing := range doc.Migrations {
			if CompareMigrationIDs(existing.ID, entry.ID) == 0 {
				return fmt.Errorf("%w: %s (recorded as %s)", ErrDuplicateID, entry.ID, existing.ID)
			}
		}
		if n := len(doc.Migrations); n > 0 {
			last := doc.Migrations[n-1].ID
			if CompareMigrationIDs(entry.ID, last) <= 0 {
				return fmt.Errorf("%w: %s is not greater than %s", ErrNonMonotonicID, entry.ID, last)
			}
		}
		doc.Migrations = append(doc.Migrations, entry)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("migration appended",
		logging.String(logging.FieldMigrationID, entry.ID),
		logging.String("version", entry.Version),
		logging.String("status", string(entry.Status)),
	)
	return nil
}

// MarkMigrationStatus moves migration id to status. Only pending -> applied
// and applied -> rolled_back are allowed. appliedDate applies to the
// pending -> applied step and defaults to today; a rollback keeps the
// original applied date.
func (s *Store) MarkMigrationStatus(ctx context.Context, id string, status MigrationStatus, appliedDate *time.Time) error {
	target, err := ParseMigrationStatus(string(status))
	if err != nil {
		return err
	}
	var from MigrationStatus
	err = mutateDocument(ctx, s, s.databasePath, decodeDatabase, func(doc *DatabaseRegistry) error {
		idx := slices.IndexFunc(doc.Migrations, func(m Migration) bool { return m.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownID, id)
		}
		entry := &doc.Migrations[idx]
		from = entry.Status
		if err := ValidateTransition(from, target); err != nil {
			return fmt.Errorf("migration %s: %w", id, err)
		}
		if target == MigrationApplied {
			if appliedDate != nil {
				entry.AppliedDate = FormatDate(*appliedDate)
			} else {
				entry.AppliedDate = s.today()
			}
		}
		entry.Status = target
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("migration status changed",
		logging.String(logging.FieldMigrationID, id),
		logging.String("from", string(from)),
		logging.String("to", string(target)),
	)
	return nil
}
