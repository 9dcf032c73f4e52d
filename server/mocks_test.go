package server

import (
	"context"

	"nebulines/models"
	"nebulines/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockBettingService struct{ mock.Mock }

func (m *mockBettingService) PlaceBet(ctx context.Context, callerID, leagueID, eventID uuid.UUID, amount int64, prediction bool) (*models.BetReceipt, error) {
	args := m.Called(ctx, callerID, leagueID, eventID, amount, prediction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetReceipt), args.Error(1)
}

type mockSettlementService struct{ mock.Mock }

func (m *mockSettlementService) ResolveEvent(ctx context.Context, eventID, callerID uuid.UUID, result bool) (*models.SettlementResult, error) {
	args := m.Called(ctx, eventID, callerID, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

type mockEventService struct{ mock.Mock }

func (m *mockEventService) CreateEvent(ctx context.Context, callerID, leagueID uuid.UUID, input service.NewEvent) (*models.Event, error) {
	args := m.Called(ctx, callerID, leagueID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventService) ListLeagueEvents(ctx context.Context, callerID, leagueID uuid.UUID) ([]*models.Event, error) {
	args := m.Called(ctx, callerID, leagueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *mockEventService) GetEventDetail(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventDetail, error) {
	args := m.Called(ctx, callerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventDetail), args.Error(1)
}

func (m *mockEventService) ListEventBets(ctx context.Context, callerID, eventID uuid.UUID) ([]*models.Bet, error) {
	args := m.Called(ctx, callerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *mockEventService) PreviewPayout(ctx context.Context, callerID, eventID uuid.UUID, prediction bool, amount int64) (*models.PayoutPreview, error) {
	args := m.Called(ctx, callerID, eventID, prediction, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutPreview), args.Error(1)
}

func (m *mockEventService) GetLeague(ctx context.Context, callerID, leagueID uuid.UUID) (*models.League, error) {
	args := m.Called(ctx, callerID, leagueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.League), args.Error(1)
}

func (m *mockEventService) GetEventLedger(ctx context.Context, callerID, eventID uuid.UUID) (*models.EventLedger, error) {
	args := m.Called(ctx, callerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventLedger), args.Error(1)
}

type mockBankService struct{ mock.Mock }

func (m *mockBankService) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockBankService) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *mockBankService) Deposit(ctx context.Context, callerID, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, callerID, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *mockBankService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64, description string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
