package events

import (
	"time"

	"nebulines/models"

	"github.com/google/uuid"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeEventCreated   EventType = "event_created"
	EventTypeEventResolved  EventType = "event_resolved"
)

// AllEventTypes lists every type a sink can subscribe to
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeAccountCreated,
	EventTypeBetPlaced,
	EventTypeEventCreated,
	EventTypeEventResolved,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every ledger entry
type BalanceChangeEvent struct {
	UserID          uuid.UUID              `json:"user_id"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Amount          int64                  `json:"amount"`
	EventID         *uuid.UUID             `json:"event_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted when a user's account is opened with its starting balance
type AccountCreatedEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	InitialBalance int64     `json:"initial_balance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BetPlacedEvent is emitted after a bet is admitted. Pool is the pool including the bet
// as the admitting transaction saw it; concurrent admissions may be missing from it.
type BetPlacedEvent struct {
	BetID      uuid.UUID   `json:"bet_id"`
	EventID    uuid.UUID   `json:"event_id"`
	LeagueID   uuid.UUID   `json:"league_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Amount     int64       `json:"amount"`
	Prediction bool        `json:"prediction"`
	Pool       models.Pool `json:"pool"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// EventCreatedEvent is emitted when a league member opens a new event
type EventCreatedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	LeagueID  uuid.UUID `json:"league_id"`
	CreatorID uuid.UUID `json:"creator_id"`
	Title     string    `json:"title"`
	ClosesAt  time.Time `json:"closes_at"`
}

func (e EventCreatedEvent) Type() EventType {
	return EventTypeEventCreated
}

// EventResolvedEvent is emitted once an event has been settled
type EventResolvedEvent struct {
	EventID        uuid.UUID   `json:"event_id"`
	LeagueID       uuid.UUID   `json:"league_id"`
	ResolverID     uuid.UUID   `json:"resolver_id"`
	Result         bool        `json:"result"`
	Pool           models.Pool `json:"pool"`
	WinnerCount    int         `json:"winner_count"`
	LoserCount     int         `json:"loser_count"`
	TotalPaidOut   int64       `json:"total_paid_out"`
	HouseRemainder int64       `json:"house_remainder"`
}

func (e EventResolvedEvent) Type() EventType {
	return EventTypeEventResolved
}
