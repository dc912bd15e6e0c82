package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}

	if s.Addr() != "localhost:8080" {
		t.Errorf("Expected localhost:8080, got %s", s.Addr())
	}
	if s.PuzzlesDir != "puzzles" || s.LogLevel != "info" {
		t.Errorf("Unexpected defaults %+v", s)
	}
	if s.MaxStates != 1_000_000 || s.ProgressEvery != 10_000 {
		t.Errorf("Unexpected search defaults %+v", s)
	}
	if s.Store.Driver != StoreFile || s.Store.Dir != "solutions" {
		t.Errorf("Unexpected store defaults %+v", s.Store)
	}
}

func TestLoadSettings_File(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"port": 9090,
		"logLevel": "debug",
		"puzzlesDir": "catalog",
		"store": { "driver": "sqlite", "dsn": "solutions.db" }
	}`
	if err := os.WriteFile(filepath.Join(dir, "rushhour.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	s, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	if s.Port != 9090 || s.LogLevel != "debug" || s.PuzzlesDir != "catalog" {
		t.Errorf("File values not applied: %+v", s)
	}
	if s.Store.Driver != StoreSQLite || s.Store.DSN != "solutions.db" {
		t.Errorf("Store values not applied: %+v", s.Store)
	}
	if s.Host != "localhost" {
		t.Errorf("Expected default host to survive, got %q", s.Host)
	}
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("RUSHHOUR_PORT", "7000")
	t.Setenv("RUSHHOUR_STORE_DRIVER", "postgres")
	t.Setenv("RUSHHOUR_STORE_DSN", "host=db user=rush dbname=rush")

	s, err := LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	if s.Port != 7000 {
		t.Errorf("Expected port 7000 from env, got %d", s.Port)
	}
	if s.Store.Driver != StorePostgres || s.Store.DSN != "host=db user=rush dbname=rush" {
		t.Errorf("Unexpected store from env %+v", s.Store)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "rushhour.json"), []byte("{port:"), 0644); err != nil {
			t.Fatalf("Failed to write settings: %v", err)
		}
		if _, err := LoadSettings(dir); err == nil {
			t.Error("Expected error for malformed settings file")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("RUSHHOUR_STORE_DRIVER", "mongo")
		if _, err := LoadSettings(t.TempDir()); err == nil {
			t.Error("Expected error for unknown store driver")
		}
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("RUSHHOUR_STORE_DRIVER", "postgres")
		if _, err := LoadSettings(t.TempDir()); err == nil {
			t.Error("Expected error for postgres without a DSN")
		}
	})
}
