package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	maxEventTitleLength       = 200
	maxEventDescriptionLength = 2000
)

// eventService implements the EventService interface
type eventService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewEventService creates a new event service
func NewEventService(uowFactory UnitOfWorkFactory) EventService {
	return &eventService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func validateNewEvent(input NewEvent, now time.Time) error {
	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case utf8.RuneCountInString(title) > maxEventTitleLength:
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidEvent, maxEventTitleLength)
	case utf8.RuneCountInString(input.Description) > maxEventDescriptionLength:
		return fmt.Errorf("%w: description is longer than %d characters", ErrInvalidEvent, maxEventDescriptionLength)
	case !input.ClosesAt.After(input.OpensAt):
		return fmt.Errorf("%w: close time must be after open time", ErrInvalidEvent)
	case !input.ClosesAt.After(now):
		return fmt.Errorf("%w: close time must be in the future", ErrInvalidEvent)
	}
	return nil
}

// CreateEvent opens a new unresolved event in a league the caller belongs to
func (s *eventService) CreateEvent(ctx context.Context, callerID, leagueID uuid.UUID, input NewEvent) (*models.Event, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if input.OpensAt.IsZero() {
		input.OpensAt = s.now()
	}
	if err := validateNewEvent(input, s.now()); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireMember(ctx, uow, leagueID, callerID); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          uuid.New(),
		LeagueID:    leagueID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		OpensAt:     input.OpensAt.UTC(),
		ClosesAt:    input.ClosesAt.UTC(),
		State:       models.EventStateUnresolved,
		CreatorID:   callerID,
	}
	if err := uow.EventRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	uow.EventBus().Publish(events.EventCreatedEvent{
		EventID:   event.ID,
		LeagueID:  leagueID,
		CreatorID: callerID,
		Title:     event.Title,
		ClosesAt:  event.ClosesAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":  event.ID,
		"leagueID": leagueID,
		"closesAt": event.ClosesAt,
	}).Info("Event created")

	return event, nil
}

// ListLeagueEvents returns a league's events, latest close time first
func (s *eventService) ListLeagueEvents(ctx context.Context, callerID, leagueID uuid.UUID) ([]*models.Event, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireMember(ctx, uow, leagueID, callerID); err != nil {
		return nil, err
	}

	list, err := uow.EventRepository().ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return list, nil
}

// GetEventDetail returns an event together with its pool, computed from the committed bets
func (s *eventService) GetEventDetail(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventDetail, error) {
	event, bets, err := s.loadEventWithBets(ctx, callerID, eventID)
	if err != nil {
		return nil, err
	}

	pool := AggregatePool(bets)
	return &models.EventDetail{
		Event:           event,
		Pool:            pool,
		TrueMultiplier:  Multiplier(pool.TotalTrue, pool.TotalFalse),
		FalseMultiplier: Multiplier(pool.TotalFalse, pool.TotalTrue),
		BetCount:        len(bets),
	}, nil
}

// ListEventBets returns all bets on an event in placement order
func (s *eventService) ListEventBets(ctx context.Context, callerID, eventID uuid.UUID) ([]*models.Bet, error) {
	_, bets, err := s.loadEventWithBets(ctx, callerID, eventID)
	return bets, err
}

// PreviewPayout shows what a bet of amount on prediction would return
func (s *eventService) PreviewPayout(ctx context.Context, callerID, eventID uuid.UUID, prediction bool, amount int64) (*models.PayoutPreview, error) {
	if amount < models.MinimumBet {
		return nil, ErrBelowMinimum
	}
	_, bets, err := s.loadEventWithBets(ctx, callerID, eventID)
	if err != nil {
		return nil, err
	}
	return Preview(AggregatePool(bets), prediction, amount), nil
}

// GetLeague returns a league the caller is an active member of
func (s *eventService) GetLeague(ctx context.Context, callerID, leagueID uuid.UUID) (*models.League, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	league, err := uow.LeagueRepository().GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	if league == nil {
		return nil, ErrLeagueNotFound
	}
	if err := requireMember(ctx, uow, leagueID, callerID); err != nil {
		return nil, err
	}
	return league, nil
}

// GetEventLedger returns the stake, payout and loss entries of an event
func (s *eventService) GetEventLedger(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventLedger, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if err := requireMember(ctx, uow, event.LeagueID, callerID); err != nil {
		return nil, err
	}

	entries, err := uow.LedgerRepository().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event ledger: %w", err)
	}
	return &models.EventLedger{
		EventID: eventID,
		Entries: entries,
		NetFlow: models.ReplayBalance(entries),
	}, nil
}

func (s *eventService) loadEventWithBets(ctx context.Context, callerID, eventID uuid.UUID) (*models.Event, []*models.Bet, error) {
	if callerID == uuid.Nil {
		return nil, nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, nil, ErrEventNotFound
	}
	if err := requireMember(ctx, uow, event.LeagueID, callerID); err != nil {
		return nil, nil, err
	}

	bets, err := uow.BetRepository().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return event, bets, nil
}

func requireMember(ctx context.Context, uow UnitOfWork, leagueID, userID uuid.UUID) error {
	member, err := uow.LeagueRepository().IsActiveMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to check league membership: %w", err)
	}
	if !member {
		return ErrNotAMember
	}
	return nil
}
