package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.Verbosity != 0 {
		t.Errorf("Verbosity = %d, want 0", cfg.Runtime.Verbosity)
	}
	if !cfg.Modules.Re {
		t.Error("re module should default to enabled")
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[runtime]
verbosity = 2

[modules]
re = false
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.Verbosity != 2 {
		t.Errorf("Verbosity = %d, want 2", cfg.Runtime.Verbosity)
	}
	if cfg.Modules.Re {
		t.Error("re should be disabled by the file")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[runtime]
verbosity = 1
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.Verbosity != 1 {
		t.Errorf("Verbosity = %d, want 1", cfg.Runtime.Verbosity)
	}
	if !cfg.Modules.Re {
		t.Error("sections absent from the file keep their defaults")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[runtime\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed toml should be an error")
	}
}
