package mysql

import (
	"database/sql"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/Olprog59/go-crudstarter/internal/repository/gateway"
)

// Factory implements DatabaseFactory for MySQL / Implémente DatabaseFactory pour MySQL
type Factory struct{}

// NewRecordGateway creates a record gateway / Crée une passerelle d'enregistrements
func (f *Factory) NewRecordGateway(db *sql.DB, entity domain.Entity) ports.RecordGateway {
	return gateway.New(db, entity, Dialect{})
}
