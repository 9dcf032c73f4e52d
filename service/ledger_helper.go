package service

import (
	"context"
	"fmt"

	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
)

// RecordLedgerEntry appends a ledger entry and queues the matching balance change event.
// Every balance movement in the system goes through here, in the same unit of work
// that moved the balance.
func RecordLedgerEntry(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if !entry.Type.Valid() {
		return fmt.Errorf("unknown ledger entry type %q", entry.Type)
	}
	if entry.Amount < 0 {
		return fmt.Errorf("ledger entry amount cannot be negative: %d", entry.Amount)
	}
	if !entry.IsConsistent() {
		return fmt.Errorf("ledger entry %s of %d does not move balance from %d to %d",
			entry.Type, entry.Amount, entry.BalanceBefore, entry.BalanceAfter)
	}

	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          entry.UserID,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		TransactionType: entry.Type,
		Amount:          entry.Amount,
		EventID:         entry.EventID,
	})
	return nil
}

// debitWithEntry takes amount from the user and fills in and records entry
func debitWithEntry(ctx context.Context, uow UnitOfWork, userID uuid.UUID, amount int64, entry *models.LedgerEntry) error {
	newBalance, err := uow.AccountRepository().Debit(ctx, userID, amount)
	if err != nil {
		return err
	}
	entry.UserID = userID
	entry.Amount = amount
	entry.BalanceBefore = newBalance + amount
	entry.BalanceAfter = newBalance
	return RecordLedgerEntry(ctx, uow, entry)
}

// creditWithEntry gives amount to the user and fills in and records entry
func creditWithEntry(ctx context.Context, uow UnitOfWork, userID uuid.UUID, amount int64, entry *models.LedgerEntry) error {
	newBalance, err := uow.AccountRepository().Credit(ctx, userID, amount)
	if err != nil {
		return err
	}
	entry.UserID = userID
	entry.Amount = amount
	entry.BalanceBefore = newBalance - amount
	entry.BalanceAfter = newBalance
	return RecordLedgerEntry(ctx, uow, entry)
}
