package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"nebulines/events"
	"nebulines/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type recordedPublish struct {
	sink, eventType string
	err             error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedPublish
}

func (r *fakeRecorder) RecordEventPublished(sink, eventType string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedPublish{sink, eventType, err})
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "accounts.balance_changed"},
		{events.AccountCreatedEvent{}, "accounts.created"},
		{events.BetPlacedEvent{}, "bets.placed"},
		{events.EventCreatedEvent{}, "events.created"},
		{events.EventResolvedEvent{}, "events.resolved"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, mapper.GetAllSubjects(), subject)
		})
	}
	assert.Len(t, mapper.GetAllSubjects(), len(events.AllEventTypes))
}

func TestEventForwarder_PublishesEnvelope(t *testing.T) {
	publisher := &fakePublisher{}
	recorder := &fakeRecorder{}
	forwarder := NewEventForwarder(publisher, "nats", recorder)

	bet := events.BetPlacedEvent{
		BetID:      uuid.New(),
		EventID:    uuid.New(),
		UserID:     uuid.New(),
		Amount:     100,
		Prediction: true,
		Pool:       models.Pool{TotalTrue: 100},
	}
	forwarder.Forward(context.Background(), bet)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, "bets.placed", msg.subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.data, &envelope))
	assert.Equal(t, "bet_placed", envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.NotEmpty(t, envelope.EventID)

	var payload events.BetPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, bet, payload)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, recordedPublish{"nats", "bet_placed", nil}, recorder.calls[0])
}

func TestEventForwarder_PublishFailureIsRecorded(t *testing.T) {
	boom := errors.New("broker unavailable")
	publisher := &fakePublisher{err: boom}
	recorder := &fakeRecorder{}
	forwarder := NewEventForwarder(publisher, "kafka", recorder)

	forwarder.Forward(context.Background(), events.AccountCreatedEvent{UserID: uuid.New(), InitialBalance: 1000})

	require.Len(t, recorder.calls, 1)
	assert.ErrorIs(t, recorder.calls[0].err, boom)
}

func TestEventForwarder_RegisterReceivesBusEvents(t *testing.T) {
	bus := events.NewBus()
	publisher := &fakePublisher{}
	NewEventForwarder(publisher, "nats", nil).Register(bus)

	bus.Emit(context.Background(), events.EventCreatedEvent{EventID: uuid.New(), Title: "rain", ClosesAt: time.Now()})
	bus.Emit(context.Background(), events.EventResolvedEvent{EventID: uuid.New(), Result: true})
	bus.Wait()

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	subjects := make([]string, 0, len(publisher.messages))
	for _, m := range publisher.messages {
		subjects = append(subjects, m.subject)
	}
	assert.ElementsMatch(t, []string{"events.created", "events.resolved"}, subjects)
}
