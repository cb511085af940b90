package database

import (
	"strings"
	"testing"
)

// マイグレーションファイルがバイナリに埋め込まれ、
// up/downが対で存在することを検証する。
func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migration files embedded")
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file name: %s", name)
		}
	}

	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up file", base)
		}
	}
}

// notesテーブルのマイグレーションにversionカラムの定義が含まれることを検証する。
func TestNotesMigrationDefinesVersion(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000002_create_notes.up.sql")
	if err != nil {
		t.Fatalf("failed to read notes migration: %v", err)
	}

	sql := string(data)
	if !strings.Contains(sql, "version") {
		t.Error("notes migration should define a version column")
	}
	if !strings.Contains(sql, "owner_id") {
		t.Error("notes migration should define an owner_id column")
	}
}
