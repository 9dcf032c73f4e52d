package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nebulines/database"
	"nebulines/models"
	"nebulines/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, league_id, title, description, opens_at, closes_at,
		       state, result, resolved_at, creator_id, created_at`

// EventRepository implements the EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, league_id, title, description, opens_at, closes_at, state, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		event.ID,
		event.LeagueID,
		event.Title,
		event.Description,
		event.OpensAt,
		event.ClosesAt,
		event.State,
		event.CreatorID,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", mapStoreError(err))
	}
	return nil
}

// GetByID retrieves an event without locking it
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.get(ctx, id, "")
}

// GetByIDForShare retrieves an event and holds a shared lock on it until the transaction ends.
// Bet admissions share the lock; a resolution waits for them.
func (r *EventRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.get(ctx, id, "FOR SHARE")
}

// GetByIDForUpdate retrieves an event and holds an exclusive lock on it until the transaction ends
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *EventRepository) get(ctx context.Context, id uuid.UUID, lock string) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
		` + lock

	event, err := scanEvent(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, mapStoreError(err))
	}
	return event, nil
}

// MarkResolved moves an unresolved event to resolved. It returns ErrAlreadyResolved
// if the event was resolved in the meantime.
func (r *EventRepository) MarkResolved(ctx context.Context, id uuid.UUID, result bool, resolvedAt time.Time) error {
	query := `
		UPDATE events
		SET state = $2, result = $3, resolved_at = $4
		WHERE id = $1 AND state = $5
	`

	tag, err := r.q.Exec(ctx, query, id, models.EventStateResolved, result, resolvedAt, models.EventStateUnresolved)
	if err != nil {
		return fmt.Errorf("failed to resolve event %s: %w", id, mapStoreError(err))
	}
	if tag.RowsAffected() == 0 {
		return service.ErrAlreadyResolved
	}
	return nil
}

// ListByLeague returns a league's events, latest close time first
func (r *EventRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE league_id = $1
		ORDER BY closes_at DESC, created_at DESC
	`

	rows, err := r.q.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of league %s: %w", leagueID, mapStoreError(err))
	}
	defer rows.Close()

	list := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return list, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.LeagueID,
		&event.Title,
		&event.Description,
		&event.OpensAt,
		&event.ClosesAt,
		&event.State,
		&event.Result,
		&event.ResolvedAt,
		&event.CreatorID,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt event row: %w", err)
	}
	return &event, nil
}
