package infrastructure

import (
	"fmt"

	"nebulines/events"
)

// DomainEventStream is the JetStream stream holding every published subject
const DomainEventStream = "nebulines_domain_events"

// EventSubjectMapper handles mapping between domain events and message subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "accounts.balance_changed"
	case events.EventTypeAccountCreated:
		return "accounts.created"
	case events.EventTypeBetPlaced:
		return "bets.placed"
	case events.EventTypeEventCreated:
		return "events.created"
	case events.EventTypeEventResolved:
		return "events.resolved"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"accounts.balance_changed",
		"accounts.created",
		"bets.placed",
		"events.created",
		"events.resolved",
	}
}
