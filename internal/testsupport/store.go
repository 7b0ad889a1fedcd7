package testsupport

import (
	"context"
	"testing"

	"videomanager/internal/catalog"
	"videomanager/internal/config"
	"videomanager/internal/logging"
	"videomanager/internal/registry"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config, opts ...catalog.Option) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustImport imports path into store and fails the test on error.
func MustImport(t testing.TB, store *catalog.Store, path string) *catalog.Video {
	t.Helper()

	video, err := store.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("store.ImportFile(%s): %v", path, err)
	}
	return video
}

// MustInitRegistry builds a registry.Store from cfg and creates both
// documents with the default schema.
func MustInitRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.NewStoreFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("registry.NewStoreFromConfig: %v", err)
	}
	if _, err := store.Init(context.Background(), registry.SchemaVersion{}); err != nil {
		t.Fatalf("registry.Init: %v", err)
	}
	return store
}
