package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// bettingService implements the BettingService interface
type bettingService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// PlaceBet admits a bet. Checks run in a fixed order and the first failure wins:
// authentication, minimum stake, event open in this league, funds, membership.
// The debit, its ledger entry and the bet row commit together or not at all.
func (s *bettingService) PlaceBet(ctx context.Context, callerID, leagueID, eventID uuid.UUID, amount int64, prediction bool) (*models.BetReceipt, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if amount < models.MinimumBet {
		return nil, ErrBelowMinimum
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Shared lock: resolution takes FOR UPDATE and waits for us
	event, err := uow.EventRepository().GetByIDForShare(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.LeagueID != leagueID || !event.AcceptsBetsAt(s.now()) {
		return nil, ErrEventClosed
	}

	account, err := uow.AccountRepository().GetByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	member, err := uow.LeagueRepository().IsActiveMember(ctx, leagueID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check league membership: %w", err)
	}
	if !member {
		return nil, ErrNotAMember
	}

	bet := &models.Bet{
		ID:         uuid.New(),
		EventID:    event.ID,
		UserID:     callerID,
		Amount:     amount,
		Prediction: prediction,
	}

	// The balance may have moved since the read above; the conditional debit has the final say
	entry := &models.LedgerEntry{
		Type:        models.TransactionTypeBetPlaced,
		Description: fmt.Sprintf("Bet on %q", event.Title),
		EventID:     &event.ID,
		BetID:       &bet.ID,
		Metadata: map[string]any{
			"league_id":  leagueID.String(),
			"prediction": prediction,
		},
	}
	if err := debitWithEntry(ctx, uow, callerID, amount, entry); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	bets, err := uow.BetRepository().ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	pool := AggregatePool(bets)

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:      bet.ID,
		EventID:    event.ID,
		LeagueID:   leagueID,
		UserID:     callerID,
		Amount:     amount,
		Prediction: prediction,
		Pool:       pool,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":      bet.ID,
		"eventID":    event.ID,
		"userID":     callerID,
		"amount":     amount,
		"prediction": prediction,
	}).Info("Bet placed")

	return &models.BetReceipt{
		Bet:        bet,
		NewBalance: entry.BalanceAfter,
		Pool:       pool,
	}, nil
}
