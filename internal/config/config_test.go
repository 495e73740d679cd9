package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every BURROW_* override so tests control exactly what
// is set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BURROW_ROOT", "BURROW_PREFIX", "BURROW_LOG_LEVEL", "BURROW_AUDIT_DB"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	root := filepath.Join(t.TempDir(), "memories")
	t.Setenv("BURROW_ROOT", root)

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("Root = %q, want %q", cfg.Root, root)
	}
	if cfg.Prefix != "/memories" {
		t.Errorf("Prefix = %q, want /memories", cfg.Prefix)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Audit.DB != "" || cfg.Audit.Stderr {
		t.Errorf("audit sinks should default off, got %+v", cfg.Audit)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `root: ` + filepath.Join(dir, "mem") + `
prefix: /notes
logging:
  level: debug
audit:
  db: ` + filepath.Join(dir, "audit.db") + `
  stderr: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != filepath.Join(dir, "mem") {
		t.Errorf("Root = %q", cfg.Root)
	}
	if cfg.Prefix != "/notes" {
		t.Errorf("Prefix = %q, want /notes", cfg.Prefix)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Audit.DB == "" || !cfg.Audit.Stderr {
		t.Errorf("audit config not loaded: %+v", cfg.Audit)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("root: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `root: ` + filepath.Join(dir, "from-file") + `
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	envRoot := filepath.Join(dir, "from-env")
	t.Setenv("BURROW_ROOT", envRoot)
	t.Setenv("BURROW_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != envRoot {
		t.Errorf("Root = %q, want env override %q", cfg.Root, envRoot)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidateCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deep", "nested", "memories")
	cfg := &Config{Root: root}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("root was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("root is not a directory")
	}
}

func TestValidateAbsolutizesRoot(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })

	cfg := &Config{Root: "relative-root"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Root) {
		t.Errorf("Root = %q, want absolute path", cfg.Root)
	}
}

func TestValidateCreatesAuditDBDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Root:  filepath.Join(dir, "mem"),
		Audit: AuditConfig{DB: filepath.Join(dir, "state", "audit.db")},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "state")); err != nil {
		t.Errorf("audit db directory was not created: %v", err)
	}
}
