package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Sync drivers.
const (
	SyncDriverDir = "dir"
	SyncDriverS3  = "s3"
)

// Config holds application configuration.
// Priority: ENV > repo config > global config > defaults (env-default tags).
type Config struct {
	// MaxHistory caps each of the undo and redo stacks.
	MaxHistory int `json:"max_history" env:"GLOSSARY_MAX_HISTORY" env-default:"50"`

	// AllowedPaths is an allowlist of directories for TSV export.
	// Paths outside ~/.glossary/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty" env:"GLOSSARY_ALLOWED_PATHS"`

	// AllowUnsafePaths disables directory restrictions for export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" env:"GLOSSARY_ALLOW_UNSAFE_PATHS"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"GLOSSARY_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"GLOSSARY_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"GLOSSARY_DISABLED_TOOLS"`

	Log    LogConfig    `json:"log"`
	Lookup LookupConfig `json:"lookup"`
	Sync   SyncConfig   `json:"sync"`
	Web    WebConfig    `json:"web"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level"  env:"GLOSSARY_LOG_LEVEL"  env-default:"info"`
	Format string `json:"format" env:"GLOSSARY_LOG_FORMAT" env-default:"text"`
}

// LookupConfig points at the definition service.
// An empty URL selects the offline mock.
type LookupConfig struct {
	URL            string `json:"url,omitempty"   env:"GLOSSARY_LOOKUP_URL"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"GLOSSARY_LOOKUP_TIMEOUT_SECONDS" env-default:"20"`
}

// SyncConfig selects where "send to sheet" writes.
type SyncConfig struct {
	Driver string `json:"driver" env:"GLOSSARY_SYNC_DRIVER" env-default:"dir"`

	// Dir holds one TSV file per sheet for the dir driver.
	// Empty means <baseDir>/sheets.
	Dir string `json:"dir,omitempty" env:"GLOSSARY_SYNC_DIR"`

	S3Bucket          string `json:"s3_bucket,omitempty"            env:"GLOSSARY_SYNC_S3_BUCKET"`
	S3Region          string `json:"s3_region,omitempty"            env:"GLOSSARY_SYNC_S3_REGION"`
	S3Endpoint        string `json:"s3_endpoint,omitempty"          env:"GLOSSARY_SYNC_S3_ENDPOINT"`
	S3Prefix          string `json:"s3_prefix,omitempty"            env:"GLOSSARY_SYNC_S3_PREFIX"`
	S3PathStyle       bool   `json:"s3_path_style,omitempty"        env:"GLOSSARY_SYNC_S3_PATH_STYLE"`
	S3AccessKeyID     string `json:"s3_access_key_id,omitempty"     env:"GLOSSARY_SYNC_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `json:"s3_secret_access_key,omitempty" env:"GLOSSARY_SYNC_S3_SECRET_ACCESS_KEY"`
}

// WebConfig holds the local UI listener settings.
type WebConfig struct {
	Bind string `json:"bind" env:"GLOSSARY_WEB_BIND" env-default:"127.0.0.1"`
	Port int    `json:"port" env:"GLOSSARY_WEB_PORT" env-default:"8787"`
}

// DefaultConfig returns the default configuration. Keep in sync with the
// env-default tags above.
func DefaultConfig() *Config {
	return &Config{
		MaxHistory: 50,
		Log:        LogConfig{Level: "info", Format: "text"},
		Lookup:     LookupConfig{TimeoutSeconds: 20},
		Sync:       SyncConfig{Driver: SyncDriverDir},
		Web:        WebConfig{Bind: "127.0.0.1", Port: 8787},
	}
}

// Load loads configuration from baseDir/config.json plus environment.
// A missing file means ENV + defaults only.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.glossary.
func Load(baseDir string) (*Config, error) {
	var cfg Config
	path := filepath.Join(baseDir, "config.json")

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return finish(&cfg)
}

// LoadWithRepo loads the global config (globalDir/config.json) and the
// nearest .glossary/config.json found walking upward from startDir, e.g. a
// class folder. Repo values win for scalars; arrays are merged.
// Environment variables are applied last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}
	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(global, repo)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return finish(cfg)
}

// FindRepoConfig walks upward from startDir to find the nearest .glossary/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".glossary", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive, got %d", c.MaxHistory)
	}
	switch c.Sync.Driver {
	case SyncDriverDir:
	case SyncDriverS3:
		if c.Sync.S3Bucket == "" {
			return errors.New("sync.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown sync driver %q", c.Sync.Driver)
	}
	if c.Lookup.TimeoutSeconds <= 0 {
		return fmt.Errorf("lookup.timeout_seconds must be positive, got %d", c.Lookup.TimeoutSeconds)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.AllowedPaths = mergeStringSlice(cfg.AllowedPaths, nil)
	cfg.DisabledTools = mergeStringSlice(cfg.DisabledTools, nil)
	cfg.Sync.Driver = strings.ToLower(strings.TrimSpace(cfg.Sync.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// loadFileRaw decodes a config file without defaults or env.
// A missing file (or empty path) yields a zero config.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		MaxHistory:       pickInt(overlay.MaxHistory, base.MaxHistory),
		DBMaxOpenConns:   pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:   pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		AllowedPaths:     mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		DisabledTools:    mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
	}

	result.Log = LogConfig{
		Level:  pickString(overlay.Log.Level, base.Log.Level),
		Format: pickString(overlay.Log.Format, base.Log.Format),
	}
	result.Lookup = LookupConfig{
		URL:            pickString(overlay.Lookup.URL, base.Lookup.URL),
		TimeoutSeconds: pickInt(overlay.Lookup.TimeoutSeconds, base.Lookup.TimeoutSeconds),
	}
	result.Sync = SyncConfig{
		Driver:            pickString(overlay.Sync.Driver, base.Sync.Driver),
		Dir:               pickString(overlay.Sync.Dir, base.Sync.Dir),
		S3Bucket:          pickString(overlay.Sync.S3Bucket, base.Sync.S3Bucket),
		S3Region:          pickString(overlay.Sync.S3Region, base.Sync.S3Region),
		S3Endpoint:        pickString(overlay.Sync.S3Endpoint, base.Sync.S3Endpoint),
		S3Prefix:          pickString(overlay.Sync.S3Prefix, base.Sync.S3Prefix),
		S3PathStyle:       base.Sync.S3PathStyle || overlay.Sync.S3PathStyle,
		S3AccessKeyID:     pickString(overlay.Sync.S3AccessKeyID, base.Sync.S3AccessKeyID),
		S3SecretAccessKey: pickString(overlay.Sync.S3SecretAccessKey, base.Sync.S3SecretAccessKey),
	}
	result.Web = WebConfig{
		Bind: pickString(overlay.Web.Bind, base.Web.Bind),
		Port: pickInt(overlay.Web.Port, base.Web.Port),
	}

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
