package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(entries))
	}

	for i, e := range entries {
		data, err := fs.ReadFile(Migrations(), e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		body := string(data)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", e.Name())
		}
		if i > 0 && entries[i-1].Name() >= e.Name() {
			t.Fatalf("migrations out of order: %s before %s", entries[i-1].Name(), e.Name())
		}
	}
}
