package service

import (
	"context"
	"testing"
	"time"

	"nebulines/config"
	"nebulines/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Test IDs - fixed values so failures are easy to read
var (
	TestUser1ID    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	TestUser2ID    = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	TestUser3ID    = uuid.MustParse("33333333-3333-4333-8333-333333333333")
	TestOutsiderID = uuid.MustParse("44444444-4444-4444-8444-444444444444")
	TestResolverID = uuid.MustParse("99999999-9999-4999-8999-999999999999")
	TestLeagueID   = uuid.MustParse("aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa")
	TestEventID    = uuid.MustParse("eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee")
)

const TestInitialBalance int64 = 1000

// TestNow is the clock every service under test sees
var TestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	AccountRepo    *MockAccountRepository
	LedgerRepo     *MockLedgerRepository
	EventRepo      *MockEventRepository
	BetRepo        *MockBetRepository
	LeagueRepo     *MockLeagueRepository
	EventPublisher *MockEventPublisher
	UoW            *MockUnitOfWork
	Factory        *MockUnitOfWorkFactory
}

// NewTestMocks creates a new set of mocks wired into a unit of work
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		AccountRepo:    new(MockAccountRepository),
		LedgerRepo:     new(MockLedgerRepository),
		EventRepo:      new(MockEventRepository),
		BetRepo:        new(MockBetRepository),
		LeagueRepo:     new(MockLeagueRepository),
		EventPublisher: new(MockEventPublisher),
		UoW:            new(MockUnitOfWork),
		Factory:        new(MockUnitOfWorkFactory),
	}
	m.UoW.SetRepositories(m)
	return m
}

// ExpectTransaction sets up Create/Begin/Rollback and, if committed, Commit
func (m *TestMocks) ExpectTransaction(ctx context.Context, committed bool) {
	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", ctx).Return(nil)
	m.UoW.On("Rollback").Return(nil)
	if committed {
		m.UoW.On("Commit").Return(nil)
	}
}

// ExpectAnyPublish accepts every event published to the bus
func (m *TestMocks) ExpectAnyPublish() {
	m.EventPublisher.On("Publish", mock.Anything).Return()
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.EventRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.LeagueRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.Factory.AssertExpectations(t)
}

// TestConfig returns a config with TestResolverID as the only resolver
func TestConfig() *config.Config {
	cfg := config.NewTestConfig()
	cfg.ResolverUserIDs = []uuid.UUID{TestResolverID}
	cfg.StartingBalance = TestInitialBalance
	return cfg
}

// EventScenario represents an event and the bets placed on it
type EventScenario struct {
	Event *models.Event
	Bets  []*models.Bet
}

// EventScenarioBuilder builds test scenarios fluently
type EventScenarioBuilder struct {
	scenario *EventScenario
}

// NewEventScenario starts an unresolved event created by TestUser1ID that is open at TestNow
func NewEventScenario() *EventScenarioBuilder {
	return &EventScenarioBuilder{
		scenario: &EventScenario{
			Event: &models.Event{
				ID:        TestEventID,
				LeagueID:  TestLeagueID,
				Title:     "Will it rain tomorrow?",
				OpensAt:   TestNow.Add(-24 * time.Hour),
				ClosesAt:  TestNow.Add(time.Hour),
				State:     models.EventStateUnresolved,
				CreatorID: TestUser1ID,
				CreatedAt: TestNow.Add(-24 * time.Hour),
			},
		},
	}
}

// Closed moves the close time into the past
func (b *EventScenarioBuilder) Closed() *EventScenarioBuilder {
	b.scenario.Event.ClosesAt = TestNow.Add(-time.Minute)
	return b
}

// Resolved marks the event resolved with result
func (b *EventScenarioBuilder) Resolved(result bool) *EventScenarioBuilder {
	at := TestNow.Add(-time.Minute)
	b.scenario.Event.State = models.EventStateResolved
	b.scenario.Event.Result = &result
	b.scenario.Event.ResolvedAt = &at
	return b
}

// CreatedBy sets the event creator
func (b *EventScenarioBuilder) CreatedBy(userID uuid.UUID) *EventScenarioBuilder {
	b.scenario.Event.CreatorID = userID
	return b
}

// WithBet adds a bet by userID
func (b *EventScenarioBuilder) WithBet(userID uuid.UUID, amount int64, prediction bool) *EventScenarioBuilder {
	b.scenario.Bets = append(b.scenario.Bets, &models.Bet{
		ID:         uuid.New(),
		EventID:    b.scenario.Event.ID,
		UserID:     userID,
		Amount:     amount,
		Prediction: prediction,
		PlacedAt:   TestNow.Add(-time.Duration(len(b.scenario.Bets)+1) * time.Minute),
	})
	return b
}

// Build returns the scenario
func (b *EventScenarioBuilder) Build() *EventScenario {
	return b.scenario
}
