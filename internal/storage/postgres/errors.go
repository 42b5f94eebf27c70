package postgres

import (
	"github.com/go-faster/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// constraintError returns the PostgreSQL error behind err when it is a
// violation of the given class (a pgerrcode constant).
func constraintError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}

func isForeignKeyViolation(err error) (*pgconn.PgError, bool) {
	return constraintError(err, pgerrcode.ForeignKeyViolation)
}

func isCheckViolation(err error) bool {
	_, ok := constraintError(err, pgerrcode.CheckViolation)
	return ok
}

func isUniqueViolation(err error) bool {
	_, ok := constraintError(err, pgerrcode.UniqueViolation)
	return ok
}

// isNumericOutOfRange reports values that do not fit their column, such as
// an INTEGER quantity above 2^31-1.
func isNumericOutOfRange(err error) bool {
	_, ok := constraintError(err, pgerrcode.NumericValueOutOfRange)
	return ok
}
