package repository

import (
	"database/sql"
	"testing"

	"github.com/Olprog59/go-crudstarter/internal/repository/db"
)

// OpenTestSQLite opens a migrated SQLite database in a temp dir / Ouvre une BD SQLite migrée dans un dossier temporaire
//
// migrationsRoot is the folder holding the per-dialect migration directories.
func OpenTestSQLite(t testing.TB, migrationsRoot string) *sql.DB {
	t.Helper()

	initializer, err := db.NewDatabaseInitializer(db.SQLite)
	if err != nil {
		t.Fatalf("sqlite initializer: %v", err)
	}
	database, err := initializer.Initialize(db.DatabaseConfig{
		Type: db.SQLite,
		DSN:  "file:" + t.TempDir() + "/test.db",
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := db.NewMigrationDriverRegistry().Migrate(database, db.SQLite, migrationsRoot); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
