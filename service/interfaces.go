package service

import (
	"context"
	"time"

	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for balance data access
type AccountRepository interface {
	// GetByUserID retrieves an account, returning nil if the user has none
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error)

	// CreateIfMissing opens a zero-balance account. created is false when it already existed.
	CreateIfMissing(ctx context.Context, userID uuid.UUID) (account *models.Account, created bool, err error)

	// Debit subtracts amount and returns the new balance, failing with ErrInsufficientFunds
	// if the balance would go negative
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// Credit adds amount and returns the new balance
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

// LedgerRepository defines the interface for the append-only ledger
type LedgerRepository interface {
	// Append records a new entry, filling in its ID and CreatedAt
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// ListByUser returns a user's entries, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error)

	// ListByEvent returns every entry tied to an event in insertion order
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.LedgerEntry, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// GetByIDForShare reads the event with a shared row lock so that
	// resolution waits for in-flight admissions
	GetByIDForShare(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// GetByIDForUpdate reads the event with an exclusive row lock
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)

	// MarkResolved sets state, result and resolved-at. Fails with ErrAlreadyResolved
	// if the event is no longer unresolved.
	MarkResolved(ctx context.Context, id uuid.UUID, result bool, resolvedAt time.Time) error

	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*models.Event, error)
}

// BetRepository defines the interface for bet data access. Bets are never updated or deleted.
type BetRepository interface {
	// Create inserts a bet, filling in ID and PlacedAt
	Create(ctx context.Context, bet *models.Bet) error

	// ListByEvent returns all bets on an event in placement order
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error)
}

// LeagueRepository is the read-only view of leagues needed here
type LeagueRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.League, error)
	IsActiveMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error)
}

// LedgerAuditRepository compares stored balances with replayed ledgers
type LedgerAuditRepository interface {
	// FindDiscrepancies returns the number of accounts checked and those that do not reconcile
	FindDiscrepancies(ctx context.Context) (int, []models.LedgerDiscrepancy, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases queued events
	Commit() error

	// Rollback rolls back the transaction and drops queued events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
	EventRepository() EventRepository
	BetRepository() BetRepository
	LeagueRepository() LeagueRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// BettingService admits bets
type BettingService interface {
	// PlaceBet runs admission checks and, on success, debits the stake and records the bet atomically
	PlaceBet(ctx context.Context, callerID, leagueID, eventID uuid.UUID, amount int64, prediction bool) (*models.BetReceipt, error)
}

// SettlementService resolves events and pays out winners
type SettlementService interface {
	ResolveEvent(ctx context.Context, eventID, callerID uuid.UUID, result bool) (*models.SettlementResult, error)
}

// NewEvent holds the caller-supplied fields of an event being created
type NewEvent struct {
	Title       string
	Description string
	OpensAt     time.Time
	ClosesAt    time.Time
}

// EventService covers event creation and the read side of events
type EventService interface {
	CreateEvent(ctx context.Context, callerID, leagueID uuid.UUID, input NewEvent) (*models.Event, error)
	ListLeagueEvents(ctx context.Context, callerID, leagueID uuid.UUID) ([]*models.Event, error)
	GetEventDetail(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventDetail, error)
	ListEventBets(ctx context.Context, callerID, eventID uuid.UUID) ([]*models.Bet, error)
	PreviewPayout(ctx context.Context, callerID, eventID uuid.UUID, prediction bool, amount int64) (*models.PayoutPreview, error)
	GetLeague(ctx context.Context, callerID, leagueID uuid.UUID) (*models.League, error)
	GetEventLedger(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventLedger, error)
}

// BankService exposes balances and the ledger
type BankService interface {
	// GetOrCreateAccount returns the caller's account, opening it with the starting balance on first use
	GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error)
	Deposit(ctx context.Context, callerID, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error)
}

// LedgerAuditService reconciles balances against the ledger
type LedgerAuditService interface {
	Audit(ctx context.Context) (*models.LedgerAuditReport, error)
}
