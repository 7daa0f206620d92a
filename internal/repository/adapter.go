package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/Olprog59/go-crudstarter/internal/repository/mysql"
	"github.com/Olprog59/go-crudstarter/internal/repository/postgres"
	"github.com/Olprog59/go-crudstarter/internal/repository/sqlite"
)

// Compile-time checks that every Factory satisfies DatabaseFactory
// Vérifications à la compilation que chaque Factory satisfait DatabaseFactory
var (
	_ DatabaseFactory = (*sqlite.Factory)(nil)
	_ DatabaseFactory = (*mysql.Factory)(nil)
	_ DatabaseFactory = (*postgres.Factory)(nil)
)

// factoryRegistry holds all database factories / Registre de toutes les factories de BD
var factoryRegistry = map[string]DatabaseFactory{
	"sqlite":     &sqlite.Factory{},
	"sqlite3":    &sqlite.Factory{},
	"mysql":      &mysql.Factory{},
	"postgres":   &postgres.Factory{},
	"postgresql": &postgres.Factory{},
}

// Adapter adapts a database connection to record gateways / Adapte la connexion BD vers les passerelles
type Adapter struct {
	db      *sql.DB
	factory DatabaseFactory
}

// NewAdapter creates repository adapter / Crée l'adapteur de repositories
//
// An empty driver selects SQLite.
func NewAdapter(db *sql.DB, driver string) (*Adapter, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = "sqlite"
	}
	factory, ok := factoryRegistry[name]
	if !ok {
		return nil, fmt.Errorf("repository: no factory for database %q", driver)
	}

	return &Adapter{
		db:      db,
		factory: factory,
	}, nil
}

// Gateway returns the gateway for an entity / Retourne la passerelle d'une entité
func (a *Adapter) Gateway(entity domain.Entity) ports.RecordGateway {
	return a.factory.NewRecordGateway(a.db, entity)
}
