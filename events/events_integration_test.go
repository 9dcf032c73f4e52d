package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"nebulines/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		balanceEvent, ok := event.(BalanceChangeEvent)
		if !ok {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
			return
		}
		eventReceived <- balanceEvent
	})

	testEvent := BalanceChangeEvent{
		UserID:          uuid.New(),
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeBetWin,
		Amount:          500,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush(context.Background())
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	received := make(map[uuid.UUID]bool)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		received[event.(BalanceChangeEvent).UserID] = true
	})

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		transactionalBus.Publish(BalanceChangeEvent{
			UserID:          id,
			OldBalance:      int64(i * 100),
			NewBalance:      int64(i*100 + 10),
			TransactionType: models.TransactionTypeDeposit,
			Amount:          10,
		})
	}

	transactionalBus.Flush(context.Background())
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 3)
	for _, id := range ids {
		assert.True(t, received[id])
	}
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BetPlacedEvent{BetID: uuid.New(), Amount: 50})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var seen []EventType
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, event.Type())
	})

	bus.Emit(context.Background(), EventResolvedEvent{EventID: uuid.New(), Result: true})
	bus.Emit(context.Background(), AccountCreatedEvent{UserID: uuid.New(), InitialBalance: 1000})
	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []EventType{EventTypeEventResolved, EventTypeAccountCreated}, seen)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeEventCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeEventCreated, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), EventCreatedEvent{EventID: uuid.New()})
		bus.Wait()
	})

	select {
	case <-delivered:
	default:
		t.Fatal("second handler was not called")
	}
}
