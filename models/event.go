package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// EventState represents the lifecycle state of an event
type EventState string

const (
	EventStateUnresolved EventState = "unresolved"
	EventStateResolved   EventState = "resolved"
)

// Event is a yes/no question users in a league bet on
type Event struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	LeagueID    uuid.UUID  `db:"league_id" json:"league_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	OpensAt     time.Time  `db:"opens_at" json:"opens_at"`
	ClosesAt    time.Time  `db:"closes_at" json:"closes_at"`
	State       EventState `db:"state" json:"state"`
	Result      *bool      `db:"result" json:"result,omitempty"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatorID   uuid.UUID  `db:"creator_id" json:"creator_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IsResolved checks if the event has a final result
func (e *Event) IsResolved() bool {
	return e.State == EventStateResolved
}

// AcceptsBetsAt reports whether a bet placed at t can still be admitted
func (e *Event) AcceptsBetsAt(t time.Time) bool {
	return !e.IsResolved() && !t.Before(e.OpensAt) && t.Before(e.ClosesAt)
}

// IsResolver reports whether userID is one of the configured resolvers
func IsResolver(userID uuid.UUID, resolvers []uuid.UUID) bool {
	return slices.Contains(resolvers, userID)
}

// CanBeResolvedBy checks whether userID is the creator or one of the resolvers
func (e *Event) CanBeResolvedBy(userID uuid.UUID, resolvers []uuid.UUID) bool {
	return e.CreatorID == userID || IsResolver(userID, resolvers)
}

// Validate checks that result and state agree
func (e *Event) Validate() error {
	switch e.State {
	case EventStateUnresolved:
		if e.Result != nil || e.ResolvedAt != nil {
			return fmt.Errorf("unresolved event %s carries a result", e.ID)
		}
	case EventStateResolved:
		if e.Result == nil || e.ResolvedAt == nil {
			return fmt.Errorf("resolved event %s has no result", e.ID)
		}
	default:
		return fmt.Errorf("unknown event state %q", e.State)
	}
	return nil
}

// EventDetail combines an event with its current pool and display multipliers
type EventDetail struct {
	Event           *Event `json:"event"`
	Pool            Pool   `json:"pool"`
	TrueMultiplier  string `json:"true_multiplier"`
	FalseMultiplier string `json:"false_multiplier"`
	BetCount        int    `json:"bet_count"`
}
