package repository

import (
	"os"
	"strings"
	"testing"
)

// The column list the queries are built from must agree with the schema the
// initial migration ships; drift here breaks every guest query at runtime.
func TestGuestColumnsMatchMigration(t *testing.T) {
	raw, err := os.ReadFile("../../../migrations/00001_init_schema.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	schema := string(raw)
	start := strings.Index(schema, "CREATE TABLE guests (")
	if start < 0 {
		t.Fatal("guests table not found in initial migration")
	}
	end := strings.Index(schema[start:], ");")
	if end < 0 {
		t.Fatal("guests table definition not terminated")
	}
	table := schema[start : start+end]

	for _, column := range strings.Split(guestColumns, ", ") {
		if !strings.Contains(table, column) {
			t.Errorf("column %q used by the repository is missing from the guests table", column)
		}
	}
}
