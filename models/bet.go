package models

import (
	"time"

	"github.com/google/uuid"
)

// MinimumBet is the smallest stake, in nebulines, that admission accepts
const MinimumBet int64 = 10

// Bet is an immutable stake placed by a user on one side of an event
type Bet struct {
	ID         uuid.UUID `db:"id" json:"id"`
	EventID    uuid.UUID `db:"event_id" json:"event_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Amount     int64     `db:"amount" json:"amount"`
	Prediction bool      `db:"prediction" json:"prediction"`
	PlacedAt   time.Time `db:"placed_at" json:"placed_at"`
}

// IsWinner reports whether the bet backed the given result
func (b *Bet) IsWinner(result bool) bool {
	return b.Prediction == result
}

// BetReceipt is returned to the caller after a successful admission
type BetReceipt struct {
	Bet        *Bet  `json:"bet"`
	NewBalance int64 `json:"new_balance"`
	Pool       Pool  `json:"pool"`
}
