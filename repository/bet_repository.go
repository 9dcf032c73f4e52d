package repository

import (
	"context"
	"fmt"

	"nebulines/database"
	"nebulines/models"

	"github.com/google/uuid"
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a bet under the id the caller chose and fills in PlacedAt
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, event_id, user_id, amount, prediction)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING placed_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.ID,
		bet.EventID,
		bet.UserID,
		bet.Amount,
		bet.Prediction,
	).Scan(&bet.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet for user %s: %w", bet.UserID, mapStoreError(err))
	}
	return nil
}

// ListByEvent returns every bet on an event in placement order
func (r *BetRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Bet, error) {
	query := `
		SELECT id, event_id, user_id, amount, prediction, placed_at
		FROM bets
		WHERE event_id = $1
		ORDER BY placed_at, id
	`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets of event %s: %w", eventID, mapStoreError(err))
	}
	defer rows.Close()

	bets := []*models.Bet{}
	for rows.Next() {
		var bet models.Bet
		if err := rows.Scan(
			&bet.ID,
			&bet.EventID,
			&bet.UserID,
			&bet.Amount,
			&bet.Prediction,
			&bet.PlacedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

// PoolSummary returns the committed totals on each side of an event and the number of bets
func (r *BetRepository) PoolSummary(ctx context.Context, eventID uuid.UUID) (models.Pool, int, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE prediction), 0),
			COALESCE(SUM(amount) FILTER (WHERE NOT prediction), 0),
			COUNT(*)
		FROM bets
		WHERE event_id = $1
	`

	var pool models.Pool
	var count int64
	if err := r.q.QueryRow(ctx, query, eventID).Scan(&pool.TotalTrue, &pool.TotalFalse, &count); err != nil {
		return models.Pool{}, 0, fmt.Errorf("failed to summarize pool of event %s: %w", eventID, mapStoreError(err))
	}
	return pool, int(count), nil
}
