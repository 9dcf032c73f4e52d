package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nebulines/config"
	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// bankService implements the BankService interface
type bankService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewBankService creates a new bank service
func NewBankService(uowFactory UnitOfWorkFactory, cfg *config.Config) BankService {
	return &bankService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetOrCreateAccount retrieves the user's account or opens one funded with the starting balance
func (s *bankService) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	// A concurrent request may open the account first; only the creator funds it
	account, created, err := uow.AccountRepository().CreateIfMissing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		return account, nil
	}

	if s.config.StartingBalance > 0 {
		entry := &models.LedgerEntry{
			Type:        models.TransactionTypeDeposit,
			Description: "Starting balance",
			Metadata:    map[string]any{"reason": "starting_balance"},
		}
		if err := creditWithEntry(ctx, uow, userID, s.config.StartingBalance, entry); err != nil {
			return nil, fmt.Errorf("failed to fund new account: %w", err)
		}
		account.Balance = entry.BalanceAfter
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		UserID:         userID,
		InitialBalance: account.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"balance": account.Balance,
	}).Info("Opened account")

	return account, nil
}

// GetLedger returns the user's most recent ledger entries, newest first
func (s *bankService) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	limit = min(limit, maxLedgerLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return entries, nil
}

// Deposit credits a user's account. Only configured resolvers may deposit.
func (s *bankService) Deposit(ctx context.Context, callerID, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if !models.IsResolver(callerID, s.config.ResolverUserIDs) {
		return nil, ErrNotAuthorized
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, _, err := uow.AccountRepository().CreateIfMissing(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}

	entry := &models.LedgerEntry{
		Type:        models.TransactionTypeDeposit,
		Description: describe(description, "Deposit"),
		Metadata:    map[string]any{"deposited_by": callerID.String()},
	}
	if err := creditWithEntry(ctx, uow, userID, amount, entry); err != nil {
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"callerID": callerID,
		"amount":   amount,
	}).Info("Deposit recorded")

	return entry, nil
}

// Withdraw takes nebulines out of the user's own account
func (s *bankService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry := &models.LedgerEntry{
		Type:        models.TransactionTypeWithdraw,
		Description: describe(description, "Withdrawal"),
	}
	if err := debitWithEntry(ctx, uow, userID, amount, entry); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"amount": amount,
	}).Info("Withdrawal recorded")

	return entry, nil
}

func describe(description, fallback string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return fallback
}
