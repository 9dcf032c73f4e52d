package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"nebulines/events"

	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// PublishRecorder receives the outcome of every forwarded event
type PublishRecorder interface {
	RecordEventPublished(sink, eventType string, err error)
}

// EventForwarder relays committed domain events to an external message bus.
// Delivery is best effort: a failed publish is logged and counted, never retried.
type EventForwarder struct {
	publisher MessagePublisher
	mapper    *EventSubjectMapper
	sink      string
	recorder  PublishRecorder
}

// NewEventForwarder creates a forwarder. recorder may be nil.
func NewEventForwarder(publisher MessagePublisher, sink string, recorder PublishRecorder) *EventForwarder {
	return &EventForwarder{
		publisher: publisher,
		mapper:    NewEventSubjectMapper(),
		sink:      sink,
		recorder:  recorder,
	}
}

// Register subscribes the forwarder to every domain event type
func (f *EventForwarder) Register(bus *events.Bus) {
	bus.SubscribeAll(f.Forward)
	log.WithField("sink", f.sink).Info("Forwarding domain events")
}

// Forward wraps event in an envelope and publishes it on its subject
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) {
	err := f.forward(ctx, event)
	if err != nil {
		log.WithFields(log.Fields{
			"sink":      f.sink,
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward domain event")
	}
	if f.recorder != nil {
		f.recorder.RecordEventPublished(f.sink, string(event.Type()), err)
	}
}

func (f *EventForwarder) forward(ctx context.Context, event events.Event) error {
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return f.publisher.Publish(ctx, f.mapper.MapEventToSubject(event), data)
}
