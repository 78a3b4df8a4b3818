package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isSerializationFailure reports a Postgres transaction that lost a
// serializable conflict and must not be retried blindly.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}
