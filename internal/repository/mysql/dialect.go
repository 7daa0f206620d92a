package mysql

import (
	"context"

	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/jmoiron/sqlx"
)

// Dialect adapts the gateway to MySQL / Adapte la passerelle à MySQL
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) BindType() int { return sqlx.QUESTION }

// InsertID relies on LastInsertId / S'appuie sur LastInsertId
func (Dialect) InsertID(ctx context.Context, q ports.DBTX, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (Dialect) Classify(err error) error { return handleError(err) }
