package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "husk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"keyword", "name", "path"}
	if len(cfg.Completers) != len(want) {
		t.Fatalf("Completers = %v, want %v", cfg.Completers, want)
	}
	for i := range want {
		if cfg.Completers[i] != want[i] {
			t.Errorf("Completers[%d] = %q, want %q", i, cfg.Completers[i], want[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "completers: [path, keyword]\nextra_keywords: [xontrib]\ndebug: 1\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Completers) != 2 || cfg.Completers[0] != "path" || cfg.Completers[1] != "keyword" {
		t.Errorf("Completers = %v, want [path keyword]", cfg.Completers)
	}
	if len(cfg.ExtraKeywords) != 1 || cfg.ExtraKeywords[0] != "xontrib" {
		t.Errorf("ExtraKeywords = %v, want [xontrib]", cfg.ExtraKeywords)
	}
	if cfg.Debug != 1 {
		t.Errorf("Debug = %d, want 1", cfg.Debug)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "completres: [keyword]\n")
	if _, err := Load(path); err == nil {
		t.Error("Load err = nil, want error for misspelled key")
	}
}

func TestRegistry(t *testing.T) {
	cfg := &Config{Completers: []string{"path", "keyword"}}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "path" || names[1] != "keyword" {
		t.Errorf("Names = %v, want [path keyword]", names)
	}
}

func TestRegistryUnknownCompleter(t *testing.T) {
	cfg := &Config{Completers: []string{"nope"}}
	if _, err := cfg.Registry(); err == nil {
		t.Error("Registry err = nil, want error for unknown completer")
	}
}
