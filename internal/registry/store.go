package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"videomanager/internal/config"
	"videomanager/internal/fileutil"
	"videomanager/internal/logging"
)

const defaultLockTimeout = 10 * time.Second

// Options configures a Store.
type Options struct {
	ModulesPath  string
	DatabasePath string
	// LockTimeout bounds how long an operation waits for the document lock.
	LockTimeout time.Duration
	Logger      *slog.Logger
	// Now overrides the clock; tests use it to pin release dates.
	Now func() time.Time
}

// Store reads and mutates the module and database registry documents.
type Store struct {
	modulesPath  string
	databasePath string
	lockTimeout  time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewStore validates opts and returns a Store. The documents themselves are
// not touched until an operation runs.
func NewStore(opts Options) (*Store, error) {
	if opts.ModulesPath == "" || opts.DatabasePath == "" {
		return nil, errors.New("registry store requires modules and database paths")
	}
	modulesPath, err := filepath.Abs(opts.ModulesPath)
	if err != nil {
		return nil, fmt.Errorf("resolve modules registry path: %w", err)
	}
	databasePath, err := filepath.Abs(opts.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve database registry path: %w", err)
	}
	if modulesPath == databasePath {
		return nil, errors.New("module and database registries must be separate documents")
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		modulesPath:  modulesPath,
		databasePath: databasePath,
		lockTimeout:  timeout,
		logger:       logging.NewComponentLogger(opts.Logger, "registry"),
		now:          now,
	}, nil
}

// NewStoreFromConfig builds a Store from the [registry] configuration section.
func NewStoreFromConfig(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("registry store requires configuration")
	}
	return NewStore(Options{
		ModulesPath:  cfg.Registry.ModulesPath,
		DatabasePath: cfg.Registry.DatabasePath,
		LockTimeout:  cfg.LockTimeout(),
		Logger:       logger,
	})
}

// ModulesPath returns the module registry document location.
func (s *Store) ModulesPath() string { return s.modulesPath }

// DatabasePath returns the database registry document location.
func (s *Store) DatabasePath() string { return s.databasePath }

func (s *Store) today() string {
	return FormatDate(s.now())
}

// InitResult reports which documents Init created.
type InitResult struct {
	ModulesCreated  bool
	DatabaseCreated bool
}

// Init creates whichever registry documents are missing. The module registry
// starts empty; the database registry starts with schema and no migrations.
// Existing documents are left untouched. A zero schema defaults to a stable
// 1.0.0 released today.
func (s *Store) Init(ctx context.Context, schema SchemaVersion) (InitResult, error) {
	var result InitResult
	if schema.Version == "" {
		schema.Version = "1.0.0"
	}
	if schema.Status == "" {
		schema.Status = SchemaStable
	}
	status, err := ParseSchemaStatus(string(schema.Status))
	if err != nil {
		return result, err
	}
	schema.Status = status
	if schema.ReleaseDate == "" {
		schema.ReleaseDate = s.today()
	}
	if schema.Description == "" {
		schema.Description = "Initial schema"
	}
	if err := schema.validate(); err != nil {
		return result, err
	}

	stamp := s.now().UTC().Format(timestampLayout)
	created, err := s.createIfMissing(ctx, s.modulesPath, &ModuleRegistry{
		Modules:     map[string]ModuleVersion{},
		LastUpdated: stamp,
	})
	if err != nil {
		return result, err
	}
	result.ModulesCreated = created

	dbDoc := &DatabaseRegistry{Schema: schema, Migrations: []Migration{}}
	dbDoc.LastUpdated = latest(append(dbDoc.stampFloor(), s.now().UTC())...).Format(timestampLayout)
	created, err = s.createIfMissing(ctx, s.databasePath, dbDoc)
	if err != nil {
		return result, err
	}
	result.DatabaseCreated = created
	return result, nil
}

func (s *Store) createIfMissing(ctx context.Context, path string, doc document) (bool, error) {
	release, err := s.acquire(ctx, path, true)
	if err != nil {
		return false, err
	}
	defer release()

	exists, err := fileutil.Exists(path)
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	if exists {
		return false, nil
	}
	if err := doc.validate(); err != nil {
		return false, err
	}
	if err := writeDocument(path, doc); err != nil {
		return false, err
	}
	s.logger.Info("registry document created", logging.String(logging.FieldPath, path))
	return true, nil
}
