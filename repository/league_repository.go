package repository

import (
	"context"
	"errors"
	"fmt"

	"nebulines/database"
	"nebulines/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LeagueRepository implements the LeagueRepository interface
type LeagueRepository struct {
	q queryable
}

// NewLeagueRepository creates a new league repository
func NewLeagueRepository(db *database.DB) *LeagueRepository {
	return &LeagueRepository{q: db.Pool}
}

func newLeagueRepositoryWithTx(tx queryable) *LeagueRepository {
	return &LeagueRepository{q: tx}
}

// GetByID retrieves a league, or nil if it does not exist
func (r *LeagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.League, error) {
	query := `
		SELECT id, name, creator_id, created_at
		FROM leagues
		WHERE id = $1
	`

	var league models.League
	err := r.q.QueryRow(ctx, query, id).Scan(
		&league.ID,
		&league.Name,
		&league.CreatorID,
		&league.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league %s: %w", id, mapStoreError(err))
	}
	return &league, nil
}

// IsActiveMember reports whether userID is an active member of the league
func (r *LeagueRepository) IsActiveMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM league_members
			WHERE league_id = $1 AND user_id = $2 AND active
		)
	`

	var member bool
	if err := r.q.QueryRow(ctx, query, leagueID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check membership of %s in league %s: %w", userID, leagueID, mapStoreError(err))
	}
	return member, nil
}
