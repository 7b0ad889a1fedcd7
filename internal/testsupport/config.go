package testsupport

import (
	"path/filepath"
	"testing"

	"videomanager/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every path is absolute, matching what config.Load returns.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.DatabasePath = filepath.Join(cfgVal.Paths.DataDir, "videos.db")
	cfgVal.Registry.ModulesPath = filepath.Join(cfgVal.Paths.DataDir, "versions", "modules", "stable-versions.json")
	cfgVal.Registry.DatabasePath = filepath.Join(cfgVal.Paths.DataDir, "versions", "database", "stable-versions.json")
	cfgVal.Registry.LockTimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithProbeOnImport toggles duration probing during import.
func WithProbeOnImport(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.ProbeOnImport = enabled
	}
}

// WithFFprobeBinary points the config at a stub ffprobe written into the
// temp directory. The stub prints script's output verbatim.
func WithFFprobeBinary(output string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "bin", "ffprobe")
		WriteExecutable(b.t, path, "#!/bin/sh\ncat <<'JSON'\n"+output+"\nJSON\n")
		b.cfg.FFprobe.Binary = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
