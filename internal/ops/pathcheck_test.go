package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
)

func TestValidateExportPath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../glossary.tsv"},
		{"deep traversal", "../../etc/glossary.tsv"},
		{"mid-path traversal", "/tmp/../etc/glossary.tsv"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateExportPath(tc.path, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidateExportPath_ExtensionRequired(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	for _, p := range []string{"/tmp/glossary", "/tmp/glossary.csv", "/tmp/glossary.jsonl"} {
		if err := ValidateExportPath(p, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("ValidateExportPath(%q) = %v, want ErrInvalidRequest", p, err)
		}
	}
}

func TestValidateExportPath_Empty(t *testing.T) {
	if err := ValidateExportPath("", config.DefaultConfig()); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidateExportPath_DirectoryRestriction(t *testing.T) {
	cfg := config.DefaultConfig()

	err := ValidateExportPath(filepath.Join(t.TempDir(), "glossary.tsv"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for path outside allowed directories, got: %v", err)
	}
}

func TestValidateExportPath_AllowedPaths(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	if err := ValidateExportPath(filepath.Join(allowed, "out.tsv"), cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}
	if err := ValidateExportPath(filepath.Join(t.TempDir(), "out.tsv"), cfg); err == nil {
		t.Error("expected error for path outside AllowedPaths, got nil")
	}
}

func TestValidateExportPath_NestedPathRejected(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	sub := filepath.Join(allowed, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := ValidateExportPath(filepath.Join(sub, "out.tsv"), cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nested path, got: %v", err)
	}
}

func TestValidateExportPath_AllowUnsafePaths(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	if err := ValidateExportPath(filepath.Join(t.TempDir(), "a", "out.tsv"), cfg); err != nil {
		t.Errorf("expected success with AllowUnsafePaths=true, got: %v", err)
	}
}

func TestValidateExportPath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	target := filepath.Join(dir, "target.tsv")
	if err := os.WriteFile(target, []byte("x\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dir, "link.tsv")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	if err := ValidateExportPath(link, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlink, got: %v", err)
	}
}

func TestValidateExportPath_SymlinkedAllowedDirResolved(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "exports")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{link}

	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if err := ValidateExportPath(filepath.Join(resolved, "out.tsv"), cfg); err != nil {
		t.Errorf("expected success for file in the symlink target, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/glossary.tsv", false},
		{"../glossary.tsv", true},
		{"/home/../etc/passwd", true},
		{"./glossary.tsv", false},
		{"glossary..2026.tsv", false},
		{"/tmp/a/b/../c.tsv", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := containsTraversal(tc.path); got != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.contains)
			}
		})
	}
}
