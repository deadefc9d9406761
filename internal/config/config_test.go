package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.MaxHistory != want.MaxHistory {
		t.Errorf("MaxHistory = %d, want %d", cfg.MaxHistory, want.MaxHistory)
	}
	if cfg.Log != want.Log {
		t.Errorf("Log = %+v, want %+v", cfg.Log, want.Log)
	}
	if cfg.Sync.Driver != SyncDriverDir {
		t.Errorf("Sync.Driver = %q, want %q", cfg.Sync.Driver, SyncDriverDir)
	}
	if cfg.Web != want.Web {
		t.Errorf("Web = %+v, want %+v", cfg.Web, want.Web)
	}
	if cfg.Lookup.URL != "" {
		t.Errorf("Lookup.URL = %q, want empty (mock)", cfg.Lookup.URL)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"max_history": 10, "log": {"format": "json"}}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", cfg.MaxHistory)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	// Unset fields still get defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"max_history": 10}`)
	t.Setenv("GLOSSARY_MAX_HISTORY", "7")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxHistory != 7 {
		t.Errorf("MaxHistory = %d, want 7 (env)", cfg.MaxHistory)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["glossary_clear", " glossary_sync ", "glossary_clear"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 entries", cfg.DisabledTools)
	}
	if cfg.DisabledTools[1] != "glossary_sync" {
		t.Errorf("DisabledTools[1] = %q, want trimmed %q", cfg.DisabledTools[1], "glossary_sync")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero history", func(c *Config) { c.MaxHistory = 0 }, true},
		{"unknown driver", func(c *Config) { c.Sync.Driver = "ftp" }, true},
		{"s3 without bucket", func(c *Config) { c.Sync.Driver = SyncDriverS3 }, true},
		{"s3 with bucket", func(c *Config) { c.Sync.Driver = SyncDriverS3; c.Sync.S3Bucket = "class-sheets" }, false},
		{"zero lookup timeout", func(c *Config) { c.Lookup.TimeoutSeconds = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"max_history": 30, "disabled_tools": ["glossary_clear"], "sync": {"dir": "/srv/sheets"}}`)
	writeConfig(t, filepath.Join(repoRoot, ".glossary"), `{"max_history": 20, "disabled_tools": ["glossary_sync"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.MaxHistory != 20 {
		t.Errorf("MaxHistory = %d, want 20 (repo override)", cfg.MaxHistory)
	}
	if cfg.Sync.Dir != "/srv/sheets" {
		t.Errorf("Sync.Dir = %q, want global value", cfg.Sync.Dir)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 merged entries", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.MaxHistory != 50 {
		t.Errorf("MaxHistory = %d, want 50 (default)", cfg.MaxHistory)
	}
	if cfg.Web.Port != 8787 {
		t.Errorf("Web.Port = %d, want 8787", cfg.Web.Port)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".glossary"), `{"sync": {"driver": "s3", "s3_bucket": "class-a"}}`)
	nested := filepath.Join(root, "week1", "day2")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Sync.Driver != SyncDriverS3 || cfg.Sync.S3Bucket != "class-a" {
		t.Errorf("Sync = %+v, want s3/class-a from ancestor config", cfg.Sync)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		t.Errorf("FindRepoConfig() = %q, want empty", got)
	}
	if got := FindRepoConfig(""); got != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty", got)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{MaxHistory: 40, DBMaxOpenConns: 5, Web: WebConfig{Port: 9000}}
	overlay := &Config{MaxHistory: 10}

	got := Merge(base, overlay)
	if got.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", got.MaxHistory)
	}
	if got.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base)", got.DBMaxOpenConns)
	}
	if got.Web.Port != 9000 {
		t.Errorf("Web.Port = %d, want 9000 (base)", got.Web.Port)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	got := Merge(&Config{AllowUnsafePaths: true}, &Config{})
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true")
	}
}
