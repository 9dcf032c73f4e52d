package service

import (
	"context"
	"fmt"
	"time"

	"nebulines/config"
	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// settlementService implements the SettlementService interface
type settlementService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// ResolveEvent settles an event in a single transaction. Winners are credited
// stake plus their capped share of the losing pool and get a bet_win entry for
// the full payout. Losers get a bet_loss memo entry; their stake already left
// at placement. Any failure leaves the event unresolved and no balance changed.
func (s *settlementService) ResolveEvent(ctx context.Context, eventID, callerID uuid.UUID, result bool) (*models.SettlementResult, error) {
	if callerID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByIDForUpdate(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.CanBeResolvedBy(callerID, s.config.ResolverUserIDs) {
		return nil, ErrNotAuthorized
	}
	if event.IsResolved() {
		return nil, ErrAlreadyResolved
	}
	now := s.now()
	if now.Before(event.ClosesAt) {
		return nil, ErrEventStillOpen
	}

	bets, err := uow.BetRepository().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	payouts, pool := CalculateSettlement(bets, result)
	settlement := &models.SettlementResult{
		Event:             event,
		Result:            result,
		TotalWinningStake: pool.Side(result),
		TotalLosingStake:  pool.Opposite(result),
		Payouts:           payouts,
		ResolvedAt:        now,
	}

	var totalWinnings int64
	for _, p := range payouts {
		if p.Won {
			entry := &models.LedgerEntry{
				Type:        models.TransactionTypeBetWin,
				Description: fmt.Sprintf("Won bet on %q", event.Title),
				EventID:     &event.ID,
				BetID:       &p.BetID,
				Metadata: map[string]any{
					"stake":  p.Amount,
					"payout": p.Payout,
					"result": result,
				},
			}
			if err := creditWithEntry(ctx, uow, p.UserID, p.Payout, entry); err != nil {
				return nil, fmt.Errorf("failed to pay out bet %s: %w", p.BetID, err)
			}
			settlement.TotalPaidOut += p.Payout
			totalWinnings += p.Payout - p.Amount
			continue
		}

		if err := s.recordLoss(ctx, uow, event, p, result); err != nil {
			return nil, err
		}
	}

	// Winnings are each capped by a share of the losing pool, so this never goes negative
	settlement.HouseRemainder = settlement.TotalLosingStake - totalWinnings
	if settlement.HouseRemainder < 0 {
		return nil, fmt.Errorf("settlement of event %s pays %d more than the losing pool", eventID, -settlement.HouseRemainder)
	}

	if err := uow.EventRepository().MarkResolved(ctx, eventID, result, now); err != nil {
		return nil, fmt.Errorf("failed to mark event resolved: %w", err)
	}
	event.State = models.EventStateResolved
	event.Result = &result
	event.ResolvedAt = &now

	uow.EventBus().Publish(events.EventResolvedEvent{
		EventID:        event.ID,
		LeagueID:       event.LeagueID,
		ResolverID:     callerID,
		Result:         result,
		Pool:           pool,
		WinnerCount:    len(settlement.Winners()),
		LoserCount:     len(settlement.Losers()),
		TotalPaidOut:   settlement.TotalPaidOut,
		HouseRemainder: settlement.HouseRemainder,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":        eventID,
		"resolverID":     callerID,
		"result":         result,
		"bets":           len(payouts),
		"totalPaidOut":   settlement.TotalPaidOut,
		"houseRemainder": settlement.HouseRemainder,
	}).Info("Event resolved")

	return settlement, nil
}

// recordLoss writes the bet_loss memo entry. The balance is read, not changed.
func (s *settlementService) recordLoss(ctx context.Context, uow UnitOfWork, event *models.Event, p models.BetPayout, result bool) error {
	account, err := uow.AccountRepository().GetByUserID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to get account of %s: %w", p.UserID, err)
	}
	if account == nil {
		return fmt.Errorf("bet %s belongs to user %s who has no account", p.BetID, p.UserID)
	}

	entry := &models.LedgerEntry{
		UserID:        p.UserID,
		Type:          models.TransactionTypeBetLoss,
		Amount:        p.Amount,
		BalanceBefore: account.Balance,
		BalanceAfter:  account.Balance,
		Description:   fmt.Sprintf("Lost bet on %q", event.Title),
		EventID:       &event.ID,
		BetID:         &p.BetID,
		Metadata: map[string]any{
			"stake":  p.Amount,
			"result": result,
		},
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return fmt.Errorf("failed to record loss of bet %s: %w", p.BetID, err)
	}
	return nil
}
