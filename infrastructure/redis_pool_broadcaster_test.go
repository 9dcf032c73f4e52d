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
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis runs the compare-and-set script in memory
type fakeRedis struct {
	mu        sync.Mutex
	stored    map[string]string
	versions  map[string]int64
	ttls      map[string]time.Duration
	published map[string][]string
	evalErr   error
	evals     chan struct{}
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		stored:    map[string]string{},
		versions:  map[string]int64{},
		ttls:      map[string]time.Duration{},
		published: map[string][]string{},
		evals:     make(chan struct{}, 16),
	}
}

func (f *fakeRedis) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	defer func() { f.evals <- struct{}{} }()
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.evalErr != nil {
		return redis.NewCmdResult(nil, f.evalErr)
	}
	if script != storeIfNewer {
		return redis.NewCmdResult(nil, errors.New("unexpected script"))
	}

	version := args[0].(int64)
	if current, ok := f.versions[keys[1]]; ok && version <= current {
		return redis.NewCmdResult(int64(0), nil)
	}
	payload := args[1].(string)
	f.stored[keys[0]] = payload
	f.versions[keys[1]] = version
	f.ttls[keys[0]] = time.Duration(args[2].(int64)) * time.Millisecond
	channel := args[3].(string)
	f.published[channel] = append(f.published[channel], payload)
	return redis.NewCmdResult(int64(1), nil)
}

func (f *fakeRedis) snapshot(t *testing.T, eventID uuid.UUID) PoolSnapshot {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var snap PoolSnapshot
	require.NoError(t, json.Unmarshal([]byte(f.stored[PoolSnapshotKey(eventID)]), &snap))
	return snap
}

type poolSummary struct {
	pool  models.Pool
	count int
}

// fakePoolReader hands out summaries in call order. The first call can be held
// back until release is closed.
type fakePoolReader struct {
	mu        sync.Mutex
	summaries []poolSummary
	calls     int
	release   chan struct{}
	err       error
}

func (f *fakePoolReader) PoolSummary(_ context.Context, _ uuid.UUID) (models.Pool, int, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	s := f.summaries[min(call, len(f.summaries)-1)]
	f.mu.Unlock()

	if f.err != nil {
		return models.Pool{}, 0, f.err
	}
	if call == 0 && f.release != nil {
		<-f.release
	}
	return s.pool, s.count, nil
}

func TestRedisPoolBroadcaster_BetPlaced(t *testing.T) {
	r := newFakeRedis()
	pools := &fakePoolReader{summaries: []poolSummary{{models.Pool{TotalTrue: 300, TotalFalse: 100}, 2}}}
	b := &RedisPoolBroadcaster{r: r, pools: pools}
	bus := events.NewBus()
	b.Register(bus)

	eventID := uuid.New()
	bus.Emit(context.Background(), events.BetPlacedEvent{EventID: eventID})
	bus.Wait()

	published := r.published[PoolChannel(eventID)]
	require.Len(t, published, 1)
	assert.Equal(t, published[0], r.stored[PoolSnapshotKey(eventID)])
	assert.Equal(t, poolSnapshotTTL, r.ttls[PoolSnapshotKey(eventID)])

	snap := r.snapshot(t, eventID)
	assert.Equal(t, int64(4), snap.Version)
	assert.Equal(t, 2, snap.BetCount)
	assert.Equal(t, "1.33", snap.TrueMultiplier)
	assert.Equal(t, "2.00", snap.FalseMultiplier)
	assert.False(t, snap.Resolved)
	assert.Nil(t, snap.Result)
}

// The pool carried on the event is the admitting transaction's view; the
// snapshot must come from the committed store instead
func TestRedisPoolBroadcaster_ReadsCommittedPool(t *testing.T) {
	r := newFakeRedis()
	pools := &fakePoolReader{summaries: []poolSummary{{models.Pool{TotalTrue: 300}, 2}}}
	b := &RedisPoolBroadcaster{r: r, pools: pools}

	eventID := uuid.New()
	b.handle(context.Background(), events.BetPlacedEvent{
		EventID: eventID,
		Pool:    models.Pool{TotalTrue: 100},
	})

	assert.Equal(t, int64(300), r.snapshot(t, eventID).Pool.TotalTrue)
}

func TestRedisPoolBroadcaster_SlowHandlerCannotRollBack(t *testing.T) {
	r := newFakeRedis()
	pools := &fakePoolReader{
		summaries: []poolSummary{
			{models.Pool{TotalTrue: 100}, 1},
			{models.Pool{TotalTrue: 300}, 2},
		},
		release: make(chan struct{}),
	}
	b := &RedisPoolBroadcaster{r: r, pools: pools}
	bus := events.NewBus()
	b.Register(bus)

	eventID := uuid.New()
	bus.Emit(context.Background(), events.BetPlacedEvent{EventID: eventID})
	bus.Emit(context.Background(), events.BetPlacedEvent{EventID: eventID})

	// The fresher read lands first, then the held-back stale one is let through
	select {
	case <-r.evals:
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot was written")
	}
	close(pools.release)
	bus.Wait()

	snap := r.snapshot(t, eventID)
	assert.Equal(t, int64(300), snap.Pool.TotalTrue)
	assert.Equal(t, int64(4), snap.Version)
	assert.Len(t, r.published[PoolChannel(eventID)], 1, "stale snapshot must not be published")
}

func TestRedisPoolBroadcaster_EventResolved(t *testing.T) {
	r := newFakeRedis()
	pools := &fakePoolReader{summaries: []poolSummary{{models.Pool{TotalTrue: 100, TotalFalse: 200}, 2}}}
	b := &RedisPoolBroadcaster{r: r, pools: pools}

	eventID := uuid.New()
	b.handle(context.Background(), events.EventResolvedEvent{EventID: eventID, Result: false})

	snap := r.snapshot(t, eventID)
	assert.True(t, snap.Resolved)
	require.NotNil(t, snap.Result)
	assert.False(t, *snap.Result)
	assert.Equal(t, int64(5), snap.Version)

	// A bet snapshot handled after resolution carries the same count and loses
	b.handle(context.Background(), events.BetPlacedEvent{EventID: eventID})
	assert.True(t, r.snapshot(t, eventID).Resolved)
	assert.Len(t, r.published[PoolChannel(eventID)], 1)
}

func TestRedisPoolBroadcaster_ReadFailureSkipsBroadcast(t *testing.T) {
	r := newFakeRedis()
	pools := &fakePoolReader{summaries: []poolSummary{{}}, err: errors.New("pool exhausted")}
	b := &RedisPoolBroadcaster{r: r, pools: pools}

	b.handle(context.Background(), events.BetPlacedEvent{EventID: uuid.New()})

	assert.Empty(t, r.stored)
	assert.Empty(t, r.published)
}

func TestRedisPoolBroadcaster_StoreFailure(t *testing.T) {
	r := newFakeRedis()
	r.evalErr = errors.New("OOM")
	b := &RedisPoolBroadcaster{r: r}

	written, err := b.Broadcast(context.Background(), PoolSnapshot{EventID: uuid.New(), Version: 2})

	assert.ErrorIs(t, err, r.evalErr)
	assert.False(t, written)
	assert.Empty(t, r.published)
}
