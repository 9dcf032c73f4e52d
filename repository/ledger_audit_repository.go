package repository

import (
	"context"
	"fmt"

	"nebulines/database"
	"nebulines/models"

	"github.com/jackc/pgx/v5"
)

// LedgerAuditRepository reconciles account balances against the ledger
type LedgerAuditRepository struct {
	db *database.DB
}

// NewLedgerAuditRepository creates a new ledger audit repository
func NewLedgerAuditRepository(db *database.DB) *LedgerAuditRepository {
	return &LedgerAuditRepository{db: db}
}

// FindDiscrepancies returns the number of accounts checked and every account whose
// balance differs from the signed sum of its ledger. Both reads run in one snapshot.
func (r *LedgerAuditRepository) FindDiscrepancies(ctx context.Context) (int, []models.LedgerDiscrepancy, error) {
	var checked int
	discrepancies := []models.LedgerDiscrepancy{}

	err := r.db.WithTransaction(ctx, database.ReadOnlySnapshot, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&checked); err != nil {
			return fmt.Errorf("failed to count accounts: %w", err)
		}

		query := `
			SELECT a.user_id, a.balance, COALESCE(SUM(
				CASE l.type
					WHEN 'deposit' THEN l.amount
					WHEN 'bet_win' THEN l.amount
					WHEN 'withdraw' THEN -l.amount
					WHEN 'bet_placed' THEN -l.amount
					ELSE 0
				END
			), 0) AS ledger_sum
			FROM accounts a
			LEFT JOIN ledger_entries l ON l.user_id = a.user_id
			GROUP BY a.user_id, a.balance
			HAVING a.balance <> COALESCE(SUM(
				CASE l.type
					WHEN 'deposit' THEN l.amount
					WHEN 'bet_win' THEN l.amount
					WHEN 'withdraw' THEN -l.amount
					WHEN 'bet_placed' THEN -l.amount
					ELSE 0
				END
			), 0)
			ORDER BY a.user_id
		`

		rows, err := tx.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to reconcile ledger: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d models.LedgerDiscrepancy
			if err := rows.Scan(&d.UserID, &d.Balance, &d.LedgerSum); err != nil {
				return fmt.Errorf("failed to scan discrepancy: %w", err)
			}
			discrepancies = append(discrepancies, d)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, err
	}
	return checked, discrepancies, nil
}
