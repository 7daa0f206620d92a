package repository

import (
	"database/sql"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/ports"
)

// DatabaseFactory must be implemented by each database package / Doit être implémenté par chaque package de BD
// Every dialect package (sqlite, mysql, postgres) provides the same constructors,
// checked at compile time in adapter.go.
type DatabaseFactory interface {
	// NewRecordGateway creates the gateway for one entity / Crée la passerelle d'une entité
	NewRecordGateway(db *sql.DB, entity domain.Entity) ports.RecordGateway
}
