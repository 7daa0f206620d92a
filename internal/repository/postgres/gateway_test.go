package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categories = domain.Entity{
	Name:  "categories",
	Table: "categories",
	Fields: []domain.Field{
		{Name: "name", Kind: domain.KindString, Unique: true},
		{Name: "description", Kind: domain.KindString},
	},
}

const selectByID = "SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1"

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestGateway_InsertUsesReturning(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO categories (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id").
		WithArgs("Salgada", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(selectByID).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(int64(1), "Salgada", nil, ts, ts))
	mock.ExpectCommit()

	gw := (&Factory{}).NewRecordGateway(db, categories)
	rec, err := gw.Insert(context.Background(), domain.Input{"name": "Salgada"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "Salgada", rec.Fields["name"])
	assert.Nil(t, rec.Fields["description"])
	assert.Equal(t, ts, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_InsertUniqueViolationRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO categories (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	gw := (&Factory{}).NewRecordGateway(db, categories)
	_, err := gw.Insert(context.Background(), domain.Input{"name": "Salgada"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_UpdateRebindsPlaceholders(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM categories WHERE id = $1").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("UPDATE categories SET description = $1, updated_at = $2 WHERE id = $3").
		WithArgs("thin crust", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectByID).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(int64(3), "Salgada", "thin crust", ts, ts.Add(time.Minute)))
	mock.ExpectCommit()

	gw := (&Factory{}).NewRecordGateway(db, categories)
	rec, err := gw.UpdateByID(context.Background(), 3, domain.Input{"description": "thin crust"})
	require.NoError(t, err)

	assert.Equal(t, "thin crust", rec.Fields["description"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_UpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM categories WHERE id = $1").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	gw := (&Factory{}).NewRecordGateway(db, categories)
	_, err := gw.UpdateByID(context.Background(), 8, domain.Input{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_FindAllConnectionLoss(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name, description, created_at, updated_at FROM categories ORDER BY id").
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	gw := (&Factory{}).NewRecordGateway(db, categories)
	_, err := gw.FindAll(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, domain.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, domain.ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, domain.ErrConflict},
		{"deadlock", &pq.Error{Code: "40P01"}, domain.ErrTransient},
		{"connection class", &pq.Error{Code: "08001"}, domain.ErrTransient},
		{"syntax error", &pq.Error{Code: "42601"}, nil},
		{"plain error", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handleError(tt.err))
		})
	}
}
