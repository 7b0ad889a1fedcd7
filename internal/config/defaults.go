package config

const (
	defaultDataDir            = "~/.local/share/videomanager"
	defaultCatalogFile        = "videos.db"
	defaultModulesRegistry    = "versions/modules/stable-versions.json"
	defaultDatabaseRegistry   = "versions/database/stable-versions.json"
	defaultLockTimeoutSeconds = 10
	defaultFFprobeBinary      = "ffprobe"
	defaultFFprobeTimeout     = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults. The log
// directory, catalog, and registry paths are left empty and resolved against
// DataDir during Load.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Catalog: Catalog{
			RecursiveImport: true,
		},
		Registry: Registry{
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		FFprobe: FFprobe{
			Binary:         defaultFFprobeBinary,
			TimeoutSeconds: defaultFFprobeTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
