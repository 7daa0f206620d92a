package mysql

import (
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/go-sql-driver/mysql"
)

// handleError translates MySQL errors to domain error kinds / Traduit les erreurs MySQL en catégories du domaine
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return domain.ErrTransient
	}

	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return nil
	}
	switch mysqlErr.Number {
	case 1062: // ER_DUP_ENTRY
		return domain.ErrConflict
	case 1451, 1452: // ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
		return domain.ErrConflict
	case 1205, 1213: // ER_LOCK_WAIT_TIMEOUT, ER_LOCK_DEADLOCK
		return domain.ErrTransient
	}
	return nil
}
