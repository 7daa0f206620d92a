package gateway

import (
	"context"

	"github.com/Olprog59/go-crudstarter/internal/ports"
)

// Dialect hides what differs between SQL engines / Masque ce qui diffère entre moteurs SQL
type Dialect interface {
	// Name identifies the engine in logs and errors / Identifie le moteur dans les logs
	Name() string

	// BindType is the sqlx placeholder style / Style de placeholder sqlx
	BindType() int

	// InsertID runs an INSERT and returns the generated ID / Exécute un INSERT et retourne l'ID généré
	InsertID(ctx context.Context, q ports.DBTX, query string, args ...any) (int64, error)

	// Classify maps a driver error to a domain error kind, nil if unknown / Mappe une erreur pilote vers une catégorie
	Classify(err error) error
}
