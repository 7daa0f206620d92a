package postgres

import (
	"context"

	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/jmoiron/sqlx"
)

// Dialect adapts the gateway to PostgreSQL / Adapte la passerelle à PostgreSQL
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) BindType() int { return sqlx.DOLLAR }

// InsertID reads the generated key with RETURNING / Lit la clé générée avec RETURNING
func (Dialect) InsertID(ctx context.Context, q ports.DBTX, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (Dialect) Classify(err error) error { return handleError(err) }
