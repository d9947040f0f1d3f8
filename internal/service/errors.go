package service

import (
	"strings"

	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
)

// uniqueViolationCode is the postgres error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation recognizes unique-constraint failures from postgres and
// from the sqlite driver the unit tests run on.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
