package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		in   string
		want DatabaseType
		ok   bool
	}{
		{"", SQLite, true},
		{"sqlite3", SQLite, true},
		{" PostgreSQL ", PostgreSQL, true},
		{"mysql", MySQL, true},
		{"oracle", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDatabaseType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		SQLiteDSN("app.db"))

	assert.Equal(t,
		"file:app.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		SQLiteDSN("file:app.db?mode=rwc&_pragma=foreign_keys(1)"))

	assert.Equal(t, "", SQLiteDSN(""))
}

func TestNewDatabaseInitializer(t *testing.T) {
	for _, dt := range []DatabaseType{SQLite, MySQL, PostgreSQL} {
		initializer, err := NewDatabaseInitializer(dt)
		require.NoError(t, err)
		assert.Equal(t, dt, initializer.Type())
	}

	_, err := NewDatabaseInitializer("oracle")
	assert.True(t, errors.Is(err, ErrUnsupportedDatabase))
}

func TestSQLiteInitializer_Initialize(t *testing.T) {
	initializer, err := NewDatabaseInitializer(SQLite)
	require.NoError(t, err)

	database, err := initializer.Initialize(DatabaseConfig{
		Type:         SQLite,
		DSN:          filepath.Join(t.TempDir(), "initializer.db"),
		MaxOpenConns: 4,
	})
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, 4, database.Stats().MaxOpenConnections)

	// every pooled connection must enforce foreign keys
	for i := 0; i < 3; i++ {
		conn, err := database.Conn(context.Background())
		require.NoError(t, err)
		var fk int
		require.NoError(t, conn.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
		defer conn.Close()
	}
}

func TestInitializer_EmptyDSN(t *testing.T) {
	initializer, err := NewDatabaseInitializer(PostgreSQL)
	require.NoError(t, err)

	_, err = initializer.Initialize(DatabaseConfig{Type: PostgreSQL})
	assert.ErrorIs(t, err, ErrEmptyDSN)
}

func TestMigrationRegistry(t *testing.T) {
	registry := NewMigrationDriverRegistry()

	for _, dt := range []DatabaseType{SQLite, MySQL, PostgreSQL} {
		f, err := registry.GetFactory(dt)
		require.NoError(t, err)
		assert.Equal(t, dt, f.Type())
	}

	_, err := registry.GetFactory("oracle")
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)

	assert.Equal(t, filepath.Join("migrations", "postgres"), MigrationsDir("migrations", PostgreSQL))
}

func TestMigrate_SQLite(t *testing.T) {
	initializer, err := NewDatabaseInitializer(SQLite)
	require.NoError(t, err)
	database, err := initializer.Initialize(DatabaseConfig{Type: SQLite, DSN: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	defer database.Close()

	registry := NewMigrationDriverRegistry()
	version, err := registry.Migrate(database, SQLite, "../../../migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(5), version)

	// second run is a no-op
	version, err = registry.Migrate(database, SQLite, "../../../migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(5), version)

	var count int
	require.NoError(t, database.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('categories','pizzas','users','orders','todos')",
	).Scan(&count))
	assert.Equal(t, 5, count)
}
