package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nebulines/events"
	"nebulines/models"
	"nebulines/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	poolSnapshotTTL      = 24 * time.Hour
	poolBroadcastTimeout = 5 * time.Second
)

// storeIfNewer writes the snapshot and publishes it only when its version is
// above the stored one, so handlers finishing out of order cannot roll it back.
// KEYS: snapshot, version. ARGV: version, payload, ttl ms, channel.
const storeIfNewer = `
local current = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) <= current then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[3])
redis.call('PUBLISH', ARGV[4], ARGV[2])
return 1
`

// ConnectRedis opens a client and verifies the server answers
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr})
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return r, nil
}

type redisScripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// PoolReader reads the committed pool of an event
type PoolReader interface {
	PoolSummary(ctx context.Context, eventID uuid.UUID) (models.Pool, int, error)
}

// PoolSnapshot is the live pool state pushed to watchers of an event.
// Version grows with every admitted bet and once more on resolution.
type PoolSnapshot struct {
	EventID         uuid.UUID   `json:"event_id"`
	Version         int64       `json:"version"`
	Pool            models.Pool `json:"pool"`
	BetCount        int         `json:"bet_count"`
	TrueMultiplier  string      `json:"true_multiplier"`
	FalseMultiplier string      `json:"false_multiplier"`
	Resolved        bool        `json:"resolved"`
	Result          *bool       `json:"result,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RedisPoolBroadcaster publishes pool changes on a per-event channel and keeps
// the latest snapshot under a key for late joiners. Pools are re-read from the
// store after commit rather than taken from the event.
type RedisPoolBroadcaster struct {
	r     redisScripter
	pools PoolReader
}

func NewRedisPoolBroadcaster(r *redis.Client, pools PoolReader) *RedisPoolBroadcaster {
	return &RedisPoolBroadcaster{r: r, pools: pools}
}

func PoolChannel(eventID uuid.UUID) string {
	return "nebulines:pool:" + eventID.String()
}

func PoolSnapshotKey(eventID uuid.UUID) string {
	return "nebulines:pool:latest:" + eventID.String()
}

func poolVersionKey(eventID uuid.UUID) string {
	return "nebulines:pool:version:" + eventID.String()
}

// Register subscribes to pool-changing events
func (b *RedisPoolBroadcaster) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, b.handle)
	bus.Subscribe(events.EventTypeEventResolved, b.handle)
}

func (b *RedisPoolBroadcaster) handle(ctx context.Context, e events.Event) {
	var eventID uuid.UUID
	var result *bool
	switch ev := e.(type) {
	case events.BetPlacedEvent:
		eventID = ev.EventID
	case events.EventResolvedEvent:
		eventID = ev.EventID
		r := ev.Result
		result = &r
	default:
		return
	}

	ctx, cancel := context.WithTimeout(ctx, poolBroadcastTimeout)
	defer cancel()

	pool, count, err := b.pools.PoolSummary(ctx, eventID)
	if err != nil {
		log.WithFields(log.Fields{
			"eventID": eventID,
			"error":   err,
		}).Warn("Failed to read pool for broadcast")
		return
	}

	snap := newPoolSnapshot(eventID, pool, count, result)
	if _, err := b.Broadcast(ctx, snap); err != nil {
		log.WithFields(log.Fields{
			"eventID": eventID,
			"version": snap.Version,
			"error":   err,
		}).Warn("Failed to broadcast pool snapshot")
	}
}

// Broadcast stores and publishes snap unless a snapshot with the same or a
// higher version is already stored. It reports whether snap was written.
func (b *RedisPoolBroadcaster) Broadcast(ctx context.Context, snap PoolSnapshot) (bool, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("failed to marshal pool snapshot: %w", err)
	}

	written, err := b.r.Eval(ctx, storeIfNewer,
		[]string{PoolSnapshotKey(snap.EventID), poolVersionKey(snap.EventID)},
		snap.Version, string(payload), poolSnapshotTTL.Milliseconds(), PoolChannel(snap.EventID),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to store pool snapshot: %w", err)
	}
	if written == 0 {
		log.WithFields(log.Fields{
			"eventID": snap.EventID,
			"version": snap.Version,
		}).Debug("Skipping stale pool snapshot")
	}
	return written == 1, nil
}

func newPoolSnapshot(eventID uuid.UUID, pool models.Pool, betCount int, result *bool) PoolSnapshot {
	snap := PoolSnapshot{
		EventID:         eventID,
		Version:         int64(betCount) * 2,
		Pool:            pool,
		BetCount:        betCount,
		TrueMultiplier:  service.Multiplier(pool.TotalTrue, pool.TotalFalse),
		FalseMultiplier: service.Multiplier(pool.TotalFalse, pool.TotalTrue),
		Result:          result,
		UpdatedAt:       time.Now().UTC(),
	}
	// No bets are admitted after resolution, so the resolved snapshot outranks every other
	if result != nil {
		snap.Resolved = true
		snap.Version++
	}
	return snap
}
