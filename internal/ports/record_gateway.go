package ports

import (
	"context"

	"github.com/Olprog59/go-crudstarter/internal/domain"
)

// RecordReader reads records of one entity / Lit les enregistrements d'une entité
type RecordReader interface {
	// FindAll returns every record in insertion order / Retourne tous les enregistrements dans l'ordre d'insertion
	FindAll(ctx context.Context) ([]*domain.Record, error)

	// FindByID retrieves a record by ID / Récupère un enregistrement par ID
	FindByID(ctx context.Context, id int64) (*domain.Record, error)
}

// RecordWriter mutates records of one entity / Modifie les enregistrements d'une entité
type RecordWriter interface {
	// Insert stores a new record and returns it / Insère un nouvel enregistrement et le retourne
	Insert(ctx context.Context, input domain.Input) (*domain.Record, error)

	// UpdateByID applies present fields and refreshes updated_at / Applique les champs présents et rafraîchit updated_at
	UpdateByID(ctx context.Context, id int64, input domain.Input) (*domain.Record, error)

	// DeleteByID removes a record / Supprime un enregistrement
	DeleteByID(ctx context.Context, id int64) error
}

// RecordGateway performs one storage operation per call / Effectue une opération de stockage par appel
type RecordGateway interface {
	RecordReader
	RecordWriter
}
