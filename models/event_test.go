package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsResolver(t *testing.T) {
	resolver := uuid.New()

	assert.True(t, IsResolver(resolver, []uuid.UUID{uuid.New(), resolver}))
	assert.False(t, IsResolver(uuid.New(), []uuid.UUID{resolver}))
	assert.False(t, IsResolver(resolver, nil))
}

func TestEvent_CanBeResolvedBy(t *testing.T) {
	creator := uuid.New()
	resolver := uuid.New()
	event := &Event{ID: uuid.New(), CreatorID: creator}

	assert.True(t, event.CanBeResolvedBy(creator, nil))
	assert.True(t, event.CanBeResolvedBy(resolver, []uuid.UUID{resolver}))
	assert.False(t, event.CanBeResolvedBy(uuid.New(), []uuid.UUID{resolver}))
}

func TestEvent_Validate(t *testing.T) {
	result := true
	now := time.Now()

	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"unresolved", Event{State: EventStateUnresolved}, false},
		{"resolved", Event{State: EventStateResolved, Result: &result, ResolvedAt: &now}, false},
		{"unresolved with result", Event{State: EventStateUnresolved, Result: &result}, true},
		{"resolved without result", Event{State: EventStateResolved, ResolvedAt: &now}, true},
		{"unknown state", Event{State: "pending"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
