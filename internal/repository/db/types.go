package db

import "strings"

// DatabaseType represents supported database types
type DatabaseType string

const (
	SQLite     DatabaseType = "sqlite"
	MySQL      DatabaseType = "mysql"
	PostgreSQL DatabaseType = "postgres"
)

// aliases accepted in configuration / alias acceptés dans la configuration
var aliases = map[string]DatabaseType{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"mysql":      MySQL,
	"postgres":   PostgreSQL,
	"postgresql": PostgreSQL,
}

// ParseDatabaseType normalizes a configured type, empty meaning SQLite / Normalise un type configuré
func ParseDatabaseType(s string) (DatabaseType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SQLite, true
	}
	dt, ok := aliases[s]
	return dt, ok
}

// String returns string representation
func (dt DatabaseType) String() string {
	return string(dt)
}

// IsValid checks if database type is valid
func (dt DatabaseType) IsValid() bool {
	switch dt {
	case SQLite, MySQL, PostgreSQL:
		return true
	default:
		return false
	}
}
