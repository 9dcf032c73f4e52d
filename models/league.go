package models

import (
	"time"

	"github.com/google/uuid"
)

// League is a private group of users that share events
type League struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatorID uuid.UUID `db:"creator_id" json:"creator_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeagueMember links a user to a league. Inactive members keep their rows but cannot bet.
type LeagueMember struct {
	LeagueID uuid.UUID `db:"league_id" json:"league_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Active   bool      `db:"active" json:"active"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
