package db

import "errors"

// Initialization errors / Erreurs d'initialisation
var (
	ErrUnsupportedDatabase = errors.New("unsupported database type")
	ErrEmptyDSN            = errors.New("database dsn is empty")
)
