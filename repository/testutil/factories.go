package testutil

import (
	"context"
	"testing"
	"time"

	"nebulines/database"
	"nebulines/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SeedAccount opens an account for userID funded with balance.
// The funding is recorded as a deposit so the ledger stays reconciled.
func SeedAccount(t *testing.T, db *database.DB, userID uuid.UUID, balance int64) *models.Account {
	t.Helper()
	ctx := context.Background()

	account := &models.Account{UserID: userID, Balance: balance}
	err := db.QueryRow(ctx, `
		INSERT INTO accounts (user_id, balance) VALUES ($1, $2)
		RETURNING created_at, updated_at
	`, userID, balance).Scan(&account.CreatedAt, &account.UpdatedAt)
	require.NoError(t, err)

	if balance > 0 {
		_, err = db.Exec(ctx, `
			INSERT INTO ledger_entries (user_id, type, amount, balance_before, balance_after, description)
			VALUES ($1, 'deposit', $2, 0, $2, 'Seed balance')
		`, userID, balance)
		require.NoError(t, err)
	}
	return account
}

// SeedLeague creates a league owned by creatorID with creatorID and members as active members
func SeedLeague(t *testing.T, db *database.DB, creatorID uuid.UUID, members ...uuid.UUID) *models.League {
	t.Helper()
	ctx := context.Background()

	league := &models.League{ID: uuid.New(), Name: "League " + t.Name(), CreatorID: creatorID}
	err := db.QueryRow(ctx, `
		INSERT INTO leagues (id, name, creator_id) VALUES ($1, $2, $3)
		RETURNING created_at
	`, league.ID, league.Name, creatorID).Scan(&league.CreatedAt)
	require.NoError(t, err)

	for _, userID := range append([]uuid.UUID{creatorID}, members...) {
		SeedMember(t, db, league.ID, userID, true)
	}
	return league
}

// SeedMember adds or updates a league membership
func SeedMember(t *testing.T, db *database.DB, leagueID, userID uuid.UUID, active bool) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO league_members (league_id, user_id, active) VALUES ($1, $2, $3)
		ON CONFLICT (league_id, user_id) DO UPDATE SET active = EXCLUDED.active
	`, leagueID, userID, active)
	require.NoError(t, err)
}

// NewTestEvent returns an unresolved event that opened an hour ago and closes at closesAt
func NewTestEvent(leagueID, creatorID uuid.UUID, closesAt time.Time) *models.Event {
	return &models.Event{
		ID:        uuid.New(),
		LeagueID:  leagueID,
		Title:     "Will the test pass?",
		OpensAt:   time.Now().UTC().Add(-time.Hour),
		ClosesAt:  closesAt.UTC(),
		State:     models.EventStateUnresolved,
		CreatorID: creatorID,
	}
}

// SeedEvent inserts an unresolved event closing at closesAt
func SeedEvent(t *testing.T, db *database.DB, leagueID, creatorID uuid.UUID, closesAt time.Time) *models.Event {
	t.Helper()

	event := NewTestEvent(leagueID, creatorID, closesAt)
	err := db.QueryRow(context.Background(), `
		INSERT INTO events (id, league_id, title, opens_at, closes_at, state, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, event.ID, event.LeagueID, event.Title, event.OpensAt, event.ClosesAt, event.State, event.CreatorID).
		Scan(&event.CreatedAt)
	require.NoError(t, err)
	return event
}

// CloseEvent moves an event's close time into the past
func CloseEvent(t *testing.T, db *database.DB, eventID uuid.UUID) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		UPDATE events SET closes_at = NOW() - INTERVAL '1 second', opens_at = NOW() - INTERVAL '2 hours'
		WHERE id = $1
	`, eventID)
	require.NoError(t, err)
}
