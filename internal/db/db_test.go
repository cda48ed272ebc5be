package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestInitCreatesDirectoryAndMigrates(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "test.db") + "?_pragma=foreign_keys(1)"

	database, err := Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close(database)

	if !Alive(ctx, database) {
		t.Fatal("expected database to be alive")
	}

	if err := RunMigrations(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	// Second run is a no-op
	if err := RunMigrations(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}

	var count int
	if err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM files`); err != nil {
		t.Fatalf("files table missing: %v", err)
	}

	if err := MigrateDown(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	if err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM files`); err == nil {
		t.Error("expected files table to be dropped")
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, "mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestAliveNil(t *testing.T) {
	if Alive(context.Background(), nil) {
		t.Error("expected nil database to be reported down")
	}
}
