package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const pingTimeout = 5 * time.Second

// DatabaseConfig holds database connection config / Contient la config de connexion BD
type DatabaseConfig struct {
	Type            DatabaseType
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DatabaseInitializer initializes database connections / Initialise les connexions BD
type DatabaseInitializer interface {
	Initialize(config DatabaseConfig) (*sql.DB, error)
	ConfigureConnection(db *sql.DB, config DatabaseConfig) error
	Type() DatabaseType
}

// InitializerRegistry manages database initializers / Gère les initialiseurs de BD
type InitializerRegistry[T DatabaseInitializer] struct {
	factories map[DatabaseType]func() T
}

// NewInitializerRegistry creates registry / Crée le registre
func NewInitializerRegistry[T DatabaseInitializer]() *InitializerRegistry[T] {
	return &InitializerRegistry[T]{
		factories: make(map[DatabaseType]func() T),
	}
}

// Register registers initializer factory / Enregistre une factory d'initialiseur
func (r *InitializerRegistry[T]) Register(dbType DatabaseType, factory func() T) {
	r.factories[dbType] = factory
}

// Get retrieves initializer / Récupère l'initialiseur
func (r *InitializerRegistry[T]) Get(dbType DatabaseType) (T, error) {
	factory, exists := r.factories[dbType]
	if !exists {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, dbType)
	}
	return factory(), nil
}

var initializerRegistry = func() *InitializerRegistry[DatabaseInitializer] {
	registry := NewInitializerRegistry[DatabaseInitializer]()
	registry.Register(MySQL, func() DatabaseInitializer { return &mysqlInitializer{} })
	registry.Register(PostgreSQL, func() DatabaseInitializer { return &postgresInitializer{} })
	registry.Register(SQLite, func() DatabaseInitializer { return &sqliteInitializer{} })
	return registry
}()

// NewDatabaseInitializer creates initializer for database type / Crée l'initialiseur pour le type de BD
func NewDatabaseInitializer(dbType DatabaseType) (DatabaseInitializer, error) {
	return initializerRegistry.Get(dbType)
}

// baseInitializer provides common functionality / Fournit les fonctionnalités communes
type baseInitializer struct{}

func (b *baseInitializer) setConnectionPool(db *sql.DB, config DatabaseConfig) {
	maxOpen := config.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
}

// open opens, configures and pings a pool / Ouvre, configure et teste un pool
func (b *baseInitializer) open(driver, dsn string, config DatabaseConfig, di DatabaseInitializer) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", di.Type(), err)
	}

	if err := di.ConfigureConnection(db, config); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", di.Type(), err)
	}

	slog.Info("database connected", "type", di.Type())
	return db, nil
}

// MySQL initializer / Initialiseur MySQL
type mysqlInitializer struct {
	baseInitializer
}

func (i *mysqlInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return i.open("mysql", config.DSN, config, i)
}

func (i *mysqlInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	if _, err := db.Exec("SET SESSION sql_mode='TRADITIONAL,NO_AUTO_VALUE_ON_ZERO'"); err != nil {
		slog.Warn("failed to set mysql sql_mode", "error", err)
	}
	return nil
}

func (i *mysqlInitializer) Type() DatabaseType {
	return MySQL
}

// PostgreSQL initializer / Initialiseur PostgreSQL
type postgresInitializer struct {
	baseInitializer
}

func (i *postgresInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	return i.open("postgres", config.DSN, config, i)
}

func (i *postgresInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	if _, err := db.Exec("SET TIME ZONE 'UTC'"); err != nil {
		slog.Warn("failed to set postgres timezone", "error", err)
	}
	return nil
}

func (i *postgresInitializer) Type() DatabaseType {
	return PostgreSQL
}

// SQLite initializer / Initialiseur SQLite
type sqliteInitializer struct {
	baseInitializer
}

func (i *sqliteInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	if strings.HasPrefix(config.DSN, ":memory:") && config.MaxOpenConns != 1 {
		slog.Warn("in-memory sqlite with a pool gives each connection its own database; set max_open_conns to 1")
	}
	return i.open("sqlite", SQLiteDSN(config.DSN), config, i)
}

func (i *sqliteInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	// journal_mode is stored in the file; per-connection pragmas live in the DSN
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA trusted_schema=OFF;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			slog.Warn("failed to execute pragma", "pragma", pragma, "error", err)
		}
	}
	return nil
}

func (i *sqliteInitializer) Type() DatabaseType {
	return SQLite
}

// connPragmas must hold on every pooled connection / doivent s'appliquer à chaque connexion du pool
var connPragmas = []struct{ name, value string }{
	{"foreign_keys", "1"},
	{"busy_timeout", "5000"},
	{"synchronous", "NORMAL"},
}

// SQLiteDSN appends per-connection pragmas missing from dsn / Ajoute les pragmas de connexion absents du DSN
func SQLiteDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	var extra []string
	for _, p := range connPragmas {
		if !strings.Contains(dsn, "_pragma="+p.name) {
			extra = append(extra, "_pragma="+p.name+"("+p.value+")")
		}
	}
	if len(extra) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}
