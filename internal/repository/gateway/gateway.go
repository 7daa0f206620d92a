// Package gateway implements the record store shared by every SQL dialect.
//
// Queries are written with "?" placeholders and rebound through sqlx for the
// dialect in use. Column and table names come from the catalog, never from
// request data.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/jmoiron/sqlx"
)

var _ ports.RecordGateway = (*Gateway)(nil)

// Operation names reported in StoreError / Noms d'opérations rapportés dans StoreError
const (
	OpInsert   = "insert"
	OpFindAll  = "find_all"
	OpFindByID = "find_by_id"
	OpUpdate   = "update_by_id"
	OpDelete   = "delete_by_id"
)

// Gateway stores records of one entity in a SQL table / Stocke les enregistrements d'une entité dans une table SQL
type Gateway struct {
	db      *sql.DB
	entity  domain.Entity
	dialect Dialect
	now     func() time.Time

	selectQuery string
}

// Option customizes a Gateway / Personnalise un Gateway
type Option func(*Gateway)

// WithClock overrides the timestamp source / Remplace la source d'horodatage
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New creates a gateway for an entity / Crée une passerelle pour une entité
func New(db *sql.DB, entity domain.Entity, dialect Dialect, opts ...Option) *Gateway {
	g := &Gateway{
		db:      db,
		entity:  entity,
		dialect: dialect,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	cols := append([]string{domain.FieldID}, entity.Columns()...)
	cols = append(cols, domain.FieldCreatedAt, domain.FieldUpdatedAt)
	g.selectQuery = fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), entity.Table)
	return g
}

// Insert stores a new record and returns it / Insère un nouvel enregistrement et le retourne
func (g *Gateway) Insert(ctx context.Context, input domain.Input) (*domain.Record, error) {
	now := g.timestamp()

	var cols []string
	var args []any
	for _, f := range g.entity.Fields {
		if v, ok := input[f.Name]; ok {
			cols = append(cols, f.Name)
			args = append(args, v)
		}
	}
	cols = append(cols, domain.FieldCreatedAt, domain.FieldUpdatedAt)
	args = append(args, now, now)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		g.entity.Table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	var rec *domain.Record
	err := g.inTx(ctx, func(tx *sql.Tx) error {
		id, err := g.dialect.InsertID(ctx, tx, g.rebind(query), args...)
		if err != nil {
			return err
		}
		rec, err = g.findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, g.fail(OpInsert, err)
	}
	return rec, nil
}

// FindAll returns every record ordered by ID / Retourne tous les enregistrements triés par ID
func (g *Gateway) FindAll(ctx context.Context) ([]*domain.Record, error) {
	rows, err := g.db.QueryContext(ctx, g.selectQuery+" ORDER BY id")
	if err != nil {
		return nil, g.fail(OpFindAll, err)
	}
	defer rows.Close()

	records := make([]*domain.Record, 0)
	for rows.Next() {
		rec, err := g.scan(rows)
		if err != nil {
			return nil, g.fail(OpFindAll, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail(OpFindAll, err)
	}
	return records, nil
}

// FindByID retrieves a record by ID / Récupère un enregistrement par ID
func (g *Gateway) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := g.findByID(ctx, g.db, id)
	if err != nil {
		return nil, g.fail(OpFindByID, err)
	}
	return rec, nil
}

// UpdateByID applies present fields and refreshes updated_at / Applique les champs présents et rafraîchit updated_at
//
// An empty input only moves updated_at forward.
func (g *Gateway) UpdateByID(ctx context.Context, id int64, input domain.Input) (*domain.Record, error) {
	var sets []string
	var args []any
	for _, f := range g.entity.Fields {
		if v, ok := input[f.Name]; ok {
			sets = append(sets, f.Name+" = ?")
			args = append(args, v)
		}
	}
	sets = append(sets, domain.FieldUpdatedAt+" = ?")
	args = append(args, g.timestamp(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", g.entity.Table, strings.Join(sets, ", "))

	var rec *domain.Record
	err := g.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, g.rebind("SELECT 1 FROM "+g.entity.Table+" WHERE id = ?"), id).Scan(&exists); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, g.rebind(query), args...); err != nil {
			return err
		}
		var err error
		rec, err = g.findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, g.fail(OpUpdate, err)
	}
	return rec, nil
}

// DeleteByID removes a record / Supprime un enregistrement
func (g *Gateway) DeleteByID(ctx context.Context, id int64) error {
	query := g.rebind("DELETE FROM " + g.entity.Table + " WHERE id = ?")

	result, err := g.db.ExecContext(ctx, query, id)
	if err != nil {
		return g.fail(OpDelete, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return g.fail(OpDelete, err)
	}
	if affected == 0 {
		return g.fail(OpDelete, sql.ErrNoRows)
	}
	return nil
}

func (g *Gateway) findByID(ctx context.Context, q ports.DBTX, id int64) (*domain.Record, error) {
	row := q.QueryRowContext(ctx, g.rebind(g.selectQuery+" WHERE id = ?"), id)
	return g.scan(row)
}

// inTx runs fn in a transaction, rolling back on error / Exécute fn dans une transaction
func (g *Gateway) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (g *Gateway) rebind(query string) string {
	return sqlx.Rebind(g.dialect.BindType(), query)
}

// timestamp truncates to the finest precision every engine keeps
func (g *Gateway) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

// fail classifies err into a StoreError / Classe err dans une StoreError
func (g *Gateway) fail(op string, err error) error {
	var kind error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		kind = domain.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = domain.ErrTransient
	default:
		kind = g.dialect.Classify(err)
	}
	return &domain.StoreError{Entity: g.entity.Name, Op: op, Kind: kind, Err: err}
}
