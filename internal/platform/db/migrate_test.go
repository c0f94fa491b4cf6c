package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"010_late.sql":         "SELECT 10;",
		"002_seed.sql":         "SELECT 2;",
		"001_core.sql":         "CREATE TABLE camps (camp_id BIGSERIAL PRIMARY KEY);",
		"003_doctor_exams.sql": "SELECT 3;",
	})

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	want := []int{1, 2, 3, 10}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("position %d: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if !strings.HasPrefix(migrations[0].SQL, "CREATE TABLE camps") {
		t.Errorf("unexpected SQL: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"001_core.sql":  "SELECT 1;",
		"README.md":     "docs",
		"seed.sql":      "SELECT 0;",
		"abc_other.sql": "SELECT 0;",
	})
	if err := os.Mkdir(filepath.Join(dir, "002_dir.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 1 || migrations[0].Name != "001_core.sql" {
		t.Fatalf("expected only 001_core.sql, got %+v", migrations)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"001_core.sql":  "SELECT 1;",
		"001_again.sql": "SELECT 1;",
	})
	if _, err := NewMigrator(nil, dir).LoadMigrations(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, filepath.Join(t.TempDir(), "nope")).LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestCheckSchema(t *testing.T) {
	for _, ok := range []string{"public", "medcamp", "camp_2024"} {
		if err := checkSchema(ok); err != nil {
			t.Errorf("%q: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1abc", "public; DROP TABLE users", "a-b"} {
		if err := checkSchema(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestRepositoryMigrationsLoad(t *testing.T) {
	migrations, err := NewMigrator(nil, filepath.Join("..", "..", "..", "migrations")).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) < 3 {
		t.Fatalf("expected at least 3 shipped migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 {
		t.Errorf("expected first version 1, got %d", migrations[0].Version)
	}
}
