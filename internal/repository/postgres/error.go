package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/lib/pq"
)

// handleError translates PostgreSQL errors to domain error kinds / Traduit les erreurs PostgreSQL en catégories du domaine
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, driver.ErrBadConn) {
		return domain.ErrTransient
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		return domain.ErrConflict
	case "23503": // foreign_key_violation
		return domain.ErrConflict
	case "40001", "40P01", "57014": // serialization_failure, deadlock_detected, query_canceled
		return domain.ErrTransient
	}
	if pqErr.Code.Class() == "08" { // connection_exception
		return domain.ErrTransient
	}
	return nil
}
