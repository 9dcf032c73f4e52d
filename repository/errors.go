package repository

import (
	"errors"
	"fmt"

	"nebulines/service"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgCheckViolation       = "23514"

	balanceNonNegativeConstraint = "accounts_balance_non_negative"
)

// mapStoreError turns postgres conflicts into service errors callers can act on.
// Anything else is returned unchanged.
func mapStoreError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgSerializationFailure, pgErr.Code == pgDeadlockDetected:
		return fmt.Errorf("%w: %s", service.ErrStoreTransactionFailed, pgErr.Message)
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == balanceNonNegativeConstraint:
		return service.ErrInsufficientFunds
	}
	return err
}
