package registry_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videomanager/internal/registry"
)

func pending(id string) registry.Migration {
	return registry.Migration{
		ID:          id,
		Version:     "1.1.0",
		Description: "add duration column",
		Status:      registry.MigrationPending,
	}
}

func TestAppendMigrationEnforcesMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newClock())

	require.NoError(t, store.AppendMigration(ctx, pending("001")))
	require.NoError(t, store.AppendMigration(ctx, pending("002")))

	err := store.AppendMigration(ctx, pending("001"))
	require.ErrorIs(t, err, registry.ErrDuplicateID)

	err = store.AppendMigration(ctx, pending("000"))
	require.ErrorIs(t, err, registry.ErrNonMonotonicID)

	_, migrations, err := store.LoadDatabase(ctx)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001", migrations[0].ID)
	assert.Equal(t, "002", migrations[1].ID)
}

func TestAppendMigrationComparesNumericIDsByValue(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newClock())

	require.NoError(t, store.AppendMigration(ctx, pending("9")))
	require.NoError(t, store.AppendMigration(ctx, pending("10")))
	err := store.AppendMigration(ctx, pending("8"))
	require.ErrorIs(t, err, registry.ErrNonMonotonicID)

	// Zero-padded spellings of an existing id are the same id.
	err = store.AppendMigration(ctx, pending("010"))
	require.ErrorIs(t, err, registry.ErrDuplicateID)
	err = store.AppendMigration(ctx, pending("09"))
	require.ErrorIs(t, err, registry.ErrDuplicateID)
}

func TestAppendMigrationInitialStatus(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newStore(t, clock)

	applied := pending("001")
	applied.Status = registry.MigrationApplied
	require.NoError(t, store.AppendMigration(ctx, applied))

	rolledBack := pending("002")
	rolledBack.Status = registry.MigrationRolledBack
	err := store.AppendMigration(ctx, rolledBack)
	require.ErrorIs(t, err, registry.ErrInvalidTransition)

	dated := pending("003")
	dated.AppliedDate = "2025-10-18"
	err = store.AppendMigration(ctx, dated)
	require.ErrorIs(t, err, registry.ErrInvalidEntry)

	bad := pending("004")
	bad.Version = "1.1"
	err = store.AppendMigration(ctx, bad)
	require.ErrorIs(t, err, registry.ErrInvalidSemver)

	_, migrations, err := store.LoadDatabase(ctx)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, "2025-10-18", migrations[0].AppliedDate)
}

func TestMarkMigrationStatusTransitions(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newStore(t, clock)
	require.NoError(t, store.AppendMigration(ctx, pending("001")))
	require.NoError(t, store.AppendMigration(ctx, pending("002")))

	err := store.MarkMigrationStatus(ctx, "001", registry.MigrationRolledBack, nil)
	require.ErrorIs(t, err, registry.ErrInvalidTransition)

	err = store.MarkMigrationStatus(ctx, "001", registry.MigrationPending, nil)
	require.ErrorIs(t, err, registry.ErrInvalidTransition)

	appliedOn := time.Date(2025, 10, 17, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.MarkMigrationStatus(ctx, "001", registry.MigrationApplied, &appliedOn))

	err = store.MarkMigrationStatus(ctx, "001", registry.MigrationApplied, nil)
	require.ErrorIs(t, err, registry.ErrInvalidTransition)

	clock.Advance(24 * time.Hour)
	require.NoError(t, store.MarkMigrationStatus(ctx, "001", registry.MigrationRolledBack, nil))

	err = store.MarkMigrationStatus(ctx, "001", registry.MigrationApplied, nil)
	require.ErrorIs(t, err, registry.ErrInvalidTransition)

	err = store.MarkMigrationStatus(ctx, "999", registry.MigrationApplied, nil)
	require.ErrorIs(t, err, registry.ErrUnknownID)

	err = store.MarkMigrationStatus(ctx, "002", "done", nil)
	require.ErrorIs(t, err, registry.ErrInvalidStatus)

	_, migrations, err := store.LoadDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.MigrationRolledBack, migrations[0].Status)
	assert.Equal(t, "2025-10-17", migrations[0].AppliedDate)
	assert.Equal(t, registry.MigrationPending, migrations[1].Status)
	assert.Empty(t, migrations[1].AppliedDate)
}

func TestMarkMigrationAppliedDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newClock())
	require.NoError(t, store.AppendMigration(ctx, pending("001")))
	require.NoError(t, store.MarkMigrationStatus(ctx, "001", registry.MigrationApplied, nil))

	_, migrations, err := store.LoadDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-18", migrations[0].AppliedDate)
}

func TestLoadDatabaseAcceptsRolledBackSpellings(t *testing.T) {
	store := newStore(t, newClock())
	body := `{
  "schema": {"version": "1.1.0", "description": "Duration column", "status": "stable", "releaseDate": "2025-10-18"},
  "migrations": [
    {"id": "001", "version": "1.0.0", "description": "initial", "appliedDate": "2025-10-01", "status": "rolled back"},
    {"id": "002", "version": "1.1.0", "description": "duration", "appliedDate": "2025-10-18", "status": "rolled-back"},
    {"id": "003", "version": "1.1.0", "description": "notes index", "status": "pending"}
  ],
  "lastUpdated": "2025-10-18"
}`
	require.NoError(t, os.WriteFile(store.DatabasePath(), []byte(body), 0o644))

	schema, migrations, err := store.LoadDatabase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", schema.Version)
	require.Len(t, migrations, 3)
	assert.Equal(t, registry.MigrationRolledBack, migrations[0].Status)
	assert.Equal(t, registry.MigrationRolledBack, migrations[1].Status)
	assert.Equal(t, registry.MigrationPending, migrations[2].Status)

	// The next rewrite stores the canonical spelling.
	require.NoError(t, store.MarkMigrationStatus(context.Background(), "003", registry.MigrationApplied, nil))
	data, err := os.ReadFile(store.DatabasePath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"rolled back"`)
	assert.NotContains(t, string(data), `"rolled-back"`)
	assert.Equal(t, 2, strings.Count(string(data), `"status": "rolled_back"`))
}

func TestLoadDatabaseMalformed(t *testing.T) {
	cases := map[string]string{
		"unordered ids": `{"schema":{"version":"1.0.0","description":"","status":"stable","releaseDate":"2025-10-18"},
			"migrations":[{"id":"002","version":"1.0.0","description":"","status":"pending"},{"id":"001","version":"1.0.0","description":"","status":"pending"}],
			"lastUpdated":"2025-10-18"}`,
		"applied without date": `{"schema":{"version":"1.0.0","description":"","status":"stable","releaseDate":"2025-10-18"},
			"migrations":[{"id":"001","version":"1.0.0","description":"","status":"applied"}],
			"lastUpdated":"2025-10-18"}`,
		"schema status": `{"schema":{"version":"1.0.0","description":"","status":"deprecated","releaseDate":"2025-10-18"},
			"migrations":[],"lastUpdated":"2025-10-18"}`,
		"missing migrations": `{"schema":{"version":"1.0.0","description":"","status":"stable","releaseDate":"2025-10-18"},
			"lastUpdated":"2025-10-18"}`,
		"duplicate migrations": `{"schema":{"version":"1.0.0","description":"","status":"stable","releaseDate":"2025-10-18"},
			"migrations":[{"id":"001","version":"1.0.0","description":"","status":"pending"}],
			"migrations":[],"lastUpdated":"2025-10-18"}`,
		"duplicate schema field": `{"schema":{"version":"1.0.0","version":"2.0.0","description":"","status":"stable","releaseDate":"2025-10-18"},
			"migrations":[],"lastUpdated":"2025-10-18"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := newStore(t, newClock())
			require.NoError(t, os.WriteFile(store.DatabasePath(), []byte(body), 0o644))
			_, _, err := store.LoadDatabase(context.Background())
			require.ErrorIs(t, err, registry.ErrMalformedRegistry)
		})
	}
}

func TestSetSchemaVersion(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newStore(t, clock)

	clock.Advance(72 * time.Hour)
	require.NoError(t, store.SetSchemaVersion(ctx, "1.1.0", "", registry.SchemaBeta))
	schema, _, err := store.LoadDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", schema.Version)
	assert.Equal(t, registry.SchemaBeta, schema.Status)
	assert.Equal(t, "Initial schema", schema.Description)
	assert.Equal(t, "2025-10-21", schema.ReleaseDate)

	err = store.SetSchemaVersion(ctx, "1.2.0", "x", registry.SchemaStatus("deprecated"))
	require.ErrorIs(t, err, registry.ErrInvalidStatus)
}

func TestMigrationMutationAdvancesLastUpdated(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newStore(t, clock)

	before, err := store.DatabaseDocument(ctx)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	require.NoError(t, store.AppendMigration(ctx, pending("001")))
	after, err := store.DatabaseDocument(ctx)
	require.NoError(t, err)
	assert.True(t, lastUpdated(t, after.LastUpdated).After(lastUpdated(t, before.LastUpdated)))
}
