package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of ledger entry
type TransactionType string

const (
	TransactionTypeDeposit   TransactionType = "deposit"
	TransactionTypeWithdraw  TransactionType = "withdraw"
	TransactionTypeBetPlaced TransactionType = "bet_placed"
	TransactionTypeBetWin    TransactionType = "bet_win"
	TransactionTypeBetLoss   TransactionType = "bet_loss"
)

// LedgerEntry is an append-only record of a balance movement.
// Amount is always non-negative; the direction is implied by Type.
type LedgerEntry struct {
	ID            int64           `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	Type          TransactionType `db:"type" json:"type"`
	Amount        int64           `db:"amount" json:"amount"`
	BalanceBefore int64           `db:"balance_before" json:"balance_before"`
	BalanceAfter  int64           `db:"balance_after" json:"balance_after"`
	Description   string          `db:"description" json:"description,omitempty"`
	EventID       *uuid.UUID      `db:"event_id" json:"event_id,omitempty"`
	BetID         *uuid.UUID      `db:"bet_id" json:"bet_id,omitempty"`
	Metadata      map[string]any  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Sign returns +1, -1 or 0 depending on how the type moves a balance
func (t TransactionType) Sign() int64 {
	switch t {
	case TransactionTypeDeposit, TransactionTypeBetWin:
		return 1
	case TransactionTypeWithdraw, TransactionTypeBetPlaced:
		return -1
	default:
		return 0
	}
}

// Valid reports whether t is one of the known ledger entry types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeBetPlaced,
		TransactionTypeBetWin, TransactionTypeBetLoss:
		return true
	}
	return false
}

// SignedAmount is the amount this entry contributes to the balance
func (e *LedgerEntry) SignedAmount() int64 {
	return e.Type.Sign() * e.Amount
}

// IsConsistent checks that the recorded before/after balances match the signed amount
func (e *LedgerEntry) IsConsistent() bool {
	return e.BalanceAfter-e.BalanceBefore == e.SignedAmount()
}

// ReplayBalance sums the signed amounts of entries; for a complete account history it equals the balance
func ReplayBalance(entries []*LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.SignedAmount()
	}
	return total
}

// EventLedger is every ledger entry an event produced. NetFlow is negative
// while stakes are held and, once resolved, equals minus the house remainder.
type EventLedger struct {
	EventID uuid.UUID      `json:"event_id"`
	Entries []*LedgerEntry `json:"entries"`
	NetFlow int64          `json:"net_flow"`
}

// LedgerDiscrepancy is an account whose ledger does not add up to its balance
type LedgerDiscrepancy struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	LedgerSum int64     `json:"ledger_sum"`
}

// Drift is how far the stored balance is from the replayed ledger
func (d LedgerDiscrepancy) Drift() int64 {
	return d.Balance - d.LedgerSum
}

// LedgerAuditReport summarises one reconciliation pass
type LedgerAuditReport struct {
	AccountsChecked int                 `json:"accounts_checked"`
	Discrepancies   []LedgerDiscrepancy `json:"discrepancies"`
	StartedAt       time.Time           `json:"started_at"`
	FinishedAt      time.Time           `json:"finished_at"`
}
