package service

import "errors"

// Admission and settlement failures. Callers match them with errors.Is.
var (
	ErrAuthRequired           = errors.New("authentication required")
	ErrBelowMinimum           = errors.New("bet amount is below the minimum")
	ErrEventClosed            = errors.New("event is closed for betting")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotAMember             = errors.New("caller is not an active league member")
	ErrNotAuthorized          = errors.New("caller is not allowed to perform this action")
	ErrAlreadyResolved        = errors.New("event is already resolved")
	ErrStoreTransactionFailed = errors.New("store transaction failed")

	ErrEventNotFound  = errors.New("event not found")
	ErrLeagueNotFound = errors.New("league not found")
	ErrEventStillOpen = errors.New("event has not closed yet")
	ErrInvalidEvent   = errors.New("invalid event")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// IsRetryable reports whether the whole operation may be retried by the caller
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreTransactionFailed)
}
