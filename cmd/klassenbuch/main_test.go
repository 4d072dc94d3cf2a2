package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setFlags(t *testing.T, db, index, config string) {
	t.Helper()
	dbPath, indexPath, configPath = db, index, config
	t.Cleanup(func() {
		dbPath, indexPath, configPath = "", "", ""
	})
}

func writeConfig(t *testing.T, dir string, db, index string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "db: " + db + "\nindex: " + index + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveConfig_FileFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "data", "kb.db")
	index := filepath.Join(dir, "data", "kb.bleve")
	setFlags(t, "", "", writeConfig(t, dir, db, index))

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.DBPath != db {
		t.Fatalf("db path = %q, want the config file value %q", cfg.DBPath, db)
	}
	if cfg.IndexPath != index {
		t.Fatalf("index path = %q, want the config file value %q", cfg.IndexPath, index)
	}
}

func TestResolveConfig_FlagWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	flagDB := filepath.Join(dir, "flag.db")
	setFlags(t, flagDB, "", writeConfig(t, dir, filepath.Join(dir, "file.db"), filepath.Join(dir, "file.bleve")))

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.DBPath != flagDB {
		t.Fatalf("db path = %q, want the flag value %q", cfg.DBPath, flagDB)
	}
	if cfg.IndexPath != filepath.Join(dir, "file.bleve") {
		t.Fatalf("index path = %q, want the config file value", cfg.IndexPath)
	}
}

func TestResolveConfig_DefaultsWhenNothingSet(t *testing.T) {
	setFlags(t, "", "", "")

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	want := filepath.Join(".klassenbuch", "klassenbuch.db")
	if !strings.HasSuffix(cfg.DBPath, want) {
		t.Fatalf("db path = %q, want suffix %q", cfg.DBPath, want)
	}
	if !strings.HasSuffix(cfg.IndexPath, filepath.Join(".klassenbuch", "homework.bleve")) {
		t.Fatalf("index path = %q, want the home directory default", cfg.IndexPath)
	}
}
