package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"

	"videomanager/internal/fileutil"
	"videomanager/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// document is implemented by the two registry documents.
type document interface {
	validate() error
	// stampFloor returns the dates lastUpdated must not fall behind.
	stampFloor() []time.Time
	lastUpdated() string
	setLastUpdated(string)
}

var (
	_ document = (*ModuleRegistry)(nil)
	_ document = (*DatabaseRegistry)(nil)
)

func (s *Store) acquire(ctx context.Context, path string, exclusive bool) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if exclusive {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create registry directory: %w", ErrIO, err)
		}
	}

	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, path, s.lockTimeout)
		}
		return nil, fmt.Errorf("%w: lock %s: %w", ErrIO, path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, path, s.lockTimeout)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("registry unlock failed", logging.String(logging.FieldPath, path), logging.Error(err))
		}
	}, nil
}

func readDocument[D document](path string, decode func([]byte) (D, error)) (D, error) {
	var zero D
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	doc, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformedRegistry, path, err)
	}
	return doc, nil
}

func loadDocument[D document](ctx context.Context, s *Store, path string, decode func([]byte) (D, error)) (D, error) {
	var zero D
	release, err := s.acquire(ctx, path, false)
	if err != nil {
		return zero, err
	}
	defer release()
	return readDocument(path, decode)
}

// mutateDocument runs apply against a freshly read copy of the document and
// persists the result. Nothing is written when apply or validation fails.
func mutateDocument[D document](ctx context.Context, s *Store, path string, decode func([]byte) (D, error), apply func(D) error) error {
	release, err := s.acquire(ctx, path, true)
	if err != nil {
		return err
	}
	defer release()

	doc, err := readDocument(path, decode)
	if err != nil {
		return err
	}
	previous, err := ParseDate(doc.lastUpdated())
	if err != nil {
		return fmt.Errorf("%w: %s lastUpdated: %w", ErrMalformedRegistry, path, err)
	}
	if err := apply(doc); err != nil {
		return err
	}
	stamp := latest(append(doc.stampFloor(), s.now().UTC(), previous)...)
	doc.setLastUpdated(stamp.UTC().Format(timestampLayout))
	if err := doc.validate(); err != nil {
		return err
	}
	return writeDocument(path, doc)
}

func writeDocument(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return nil
}

// decodeStrict rejects unknown fields and trailing data so a hand-edited
// typo surfaces as a malformed document instead of being dropped on rewrite.
func decodeStrict(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after document")
	}
	return nil
}

// requireKeys checks that raw is a JSON object carrying every key.
func requireKeys(raw json.RawMessage, what string, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if fields == nil {
		return fmt.Errorf("%s: expected object", what)
	}
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return fmt.Errorf("%s: missing %q", what, key)
		}
	}
	return nil
}

// rejectDuplicateKeys fails when the top-level object, or the object under
// any of nested, repeats a key.
func rejectDuplicateKeys(data []byte, nested ...string) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	return walkObject(decoder, "document", func(key string) error {
		if slices.Contains(nested, key) {
			return walkObject(decoder, key, func(string) error {
				return skipValue(decoder)
			})
		}
		return skipValue(decoder)
	})
}

func walkObject(decoder *json.Decoder, what string, each func(key string) error) error {
	tok, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%s: expected object", what)
	}
	seen := make(map[string]struct{})
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		key, _ := tok.(string)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s: duplicate key %q", what, key)
		}
		seen[key] = struct{}{}
		if err := each(key); err != nil {
			return err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func skipValue(decoder *json.Decoder) error {
	var raw json.RawMessage
	return decoder.Decode(&raw)
}

func decodeModules(data []byte) (*ModuleRegistry, error) {
	if err := requireKeys(data, "document", "modules", "lastUpdated"); err != nil {
		return nil, err
	}
	if err := rejectDuplicateKeys(data, "modules"); err != nil {
		return nil, err
	}
	var top struct {
		Modules map[string]json.RawMessage `json:"modules"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	for name, raw := range top.Modules {
		if err := requireKeys(raw, "module "+name, "version", "description", "status", "releaseDate"); err != nil {
			return nil, err
		}
	}
	var doc ModuleRegistry
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}
	if doc.Modules == nil {
		doc.Modules = map[string]ModuleVersion{}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeDatabase(data []byte) (*DatabaseRegistry, error) {
	if err := requireKeys(data, "document", "schema", "migrations", "lastUpdated"); err != nil {
		return nil, err
	}
	if err := rejectDuplicateKeys(data, "schema"); err != nil {
		return nil, err
	}
	var top struct {
		Schema     json.RawMessage   `json:"schema"`
		Migrations []json.RawMessage `json:"migrations"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if err := requireKeys(top.Schema, "schema", "version", "description", "status", "releaseDate"); err != nil {
		return nil, err
	}
	for i, raw := range top.Migrations {
		// appliedDate is optional while a migration is pending.
		if err := requireKeys(raw, fmt.Sprintf("migration[%d]", i), "id", "version", "description", "status"); err != nil {
			return nil, err
		}
	}
	var doc DatabaseRegistry
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}
	if doc.Migrations == nil {
		doc.Migrations = []Migration{}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *ModuleRegistry) validate() error {
	for _, name := range SortedModuleNames(r.Modules) {
		if err := validateModuleName(name); err != nil {
			return err
		}
		if err := r.Modules[name].validate(); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	if _, err := ParseDate(r.LastUpdated); err != nil {
		return fmt.Errorf("lastUpdated: %w", err)
	}
	return nil
}

func (r *ModuleRegistry) stampFloor() []time.Time {
	out := make([]time.Time, 0, len(r.Modules))
	for _, entry := range r.Modules {
		if t, err := ParseDate(entry.ReleaseDate); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func (r *ModuleRegistry) lastUpdated() string       { return r.LastUpdated }
func (r *ModuleRegistry) setLastUpdated(v string) { r.LastUpdated = v }

func (r *DatabaseRegistry) validate() error {
	if err := r.Schema.validate(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	for i, migration := range r.Migrations {
		if err := migration.validate(); err != nil {
			return fmt.Errorf("migration[%d]: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := r.Migrations[i-1].ID
		if prev == migration.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, migration.ID)
		}
		if CompareMigrationIDs(migration.ID, prev) <= 0 {
			return fmt.Errorf("%w: %s follows %s", ErrNonMonotonicID, migration.ID, prev)
		}
	}
	if _, err := ParseDate(r.LastUpdated); err != nil {
		return fmt.Errorf("lastUpdated: %w", err)
	}
	return nil
}

func (r *DatabaseRegistry) stampFloor() []time.Time {
	out := make([]time.Time, 0, len(r.Migrations)+1)
	if t, err := ParseDate(r.Schema.ReleaseDate); err == nil {
		out = append(out, t)
	}
	for _, migration := range r.Migrations {
		if t, err := ParseDate(migration.AppliedDate); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func (r *DatabaseRegistry) lastUpdated() string       { return r.LastUpdated }
func (r *DatabaseRegistry) setLastUpdated(v string) { r.LastUpdated = v }
