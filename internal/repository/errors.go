package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

// Postgres error codes translated at the storage boundary.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps constraint violations onto the domain error taxonomy and
// wraps anything else with the given operation context. Raw driver errors
// never cross the repository boundary.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s: already exists", op))
		case pqForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrForeignKey.Code, appErrors.ErrForeignKey.Status, fmt.Sprintf("%s: referenced resource does not exist", op))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
