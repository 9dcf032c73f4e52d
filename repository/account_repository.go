package repository

import (
	"context"
	"errors"
	"fmt"

	"nebulines/database"
	"nebulines/models"
	"nebulines/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID retrieves an account, or nil if the user has none
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", userID, mapStoreError(err))
	}
	return &account, nil
}

// CreateIfMissing opens an empty account. created is false when the account already existed,
// in which case the existing account is returned.
func (r *AccountRepository) CreateIfMissing(ctx context.Context, userID uuid.UUID) (*models.Account, bool, error) {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, balance, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %s: %w", userID, mapStoreError(err))
	}
	return &account, true, nil
}

// Debit subtracts amount only if the balance covers it, and returns the new balance.
// The check and the write are one statement, so concurrent debits cannot overdraw.
func (r *AccountRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit account %s: %w", userID, mapStoreError(err))
	}
	return balance, nil
}

// Credit adds amount and returns the new balance
func (r *AccountRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("account %s not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit account %s: %w", userID, mapStoreError(err))
	}
	return balance, nil
}
