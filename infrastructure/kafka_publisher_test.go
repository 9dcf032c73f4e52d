package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_KeysBySubject(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.Publish(context.Background(), "bets.placed", []byte(`{"x":1}`)))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("bets.placed"), w.msgs[0].Key)
	assert.Equal(t, []byte(`{"x":1}`), w.msgs[0].Value)
	assert.Equal(t, []kafka.Header{{Key: subjectHeader, Value: []byte("bets.placed")}}, w.msgs[0].Headers)
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WrapsWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}}

	err := p.Publish(context.Background(), "events.resolved", nil)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "events.resolved")
}

func TestNewKafkaPublisher_SplitsBrokers(t *testing.T) {
	p := NewKafkaPublisher("a:9092, b:9092", "topic")

	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "topic", w.Topic)
	assert.NotNil(t, w.Addr)
	assert.True(t, w.AllowAutoTopicCreation)
}

func TestNewKafkaPublisher_PartitionsByKey(t *testing.T) {
	p := NewKafkaPublisher("a:9092", "topic")

	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	require.IsType(t, &kafka.Hash{}, w.Balancer)

	partitions := []int{0, 1, 2, 3, 4, 5}
	placed := kafka.Message{Key: []byte("bets.placed")}
	first := w.Balancer.Balance(placed, partitions...)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, w.Balancer.Balance(placed, partitions...), "same subject, same partition")
	}
}
