package sqlite

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// handleError translates SQLite errors to domain error kinds / Traduit les erreurs SQLite en catégories du domaine
//
// It returns nil when the error has no known classification.
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return nil
	}

	code := liteErr.Code()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		sqlite3.SQLITE_CONSTRAINT_TRIGGER: // ON DELETE RESTRICT fires as a trigger constraint
		return domain.ErrConflict
	}

	// Extended codes keep the primary code in the low byte
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		slog.Warn("sqlite contention", "code", code, "error", liteErr.Error())
		return domain.ErrTransient
	}

	slog.Debug("unclassified sqlite error", "code", code, "error", liteErr.Error())
	return nil
}
