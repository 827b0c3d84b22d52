// Package store provides persistent backends for the activity log and the
// trust progression state: Redis for shared online serving, SQLite for
// single-node and embedded deployments.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	companionsdk "github.com/soulmesh-ai/companion-sdk-go"
)

// RedisConfig configures the Redis-backed stores.
type RedisConfig struct {
	Prefix string // key prefix, default "companion"
}

func (c RedisConfig) prefix() string {
	if c.Prefix == "" {
		return "companion"
	}
	return c.Prefix
}

// ──────────────────────────────────────────────
// Activity log
// ──────────────────────────────────────────────

// RedisActivityStore is an append-only ActivityStore backed by Redis
// sorted sets, scored by event timestamp for range queries.
type RedisActivityStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisActivityStore creates an activity store on the given client.
func NewRedisActivityStore(client redis.UniversalClient, config ...RedisConfig) *RedisActivityStore {
	cfg := RedisConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	return &RedisActivityStore{client: client, prefix: cfg.prefix()}
}

func (s *RedisActivityStore) allKey() string {
	return s.prefix + ":act:all"
}

func (s *RedisActivityStore) userKey(userID string) string {
	return s.prefix + ":act:user:" + userID
}

func (s *RedisActivityStore) Append(ctx context.Context, event *companionsdk.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	score := float64(event.Timestamp.UnixNano())
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, s.allKey(), redis.Z{Score: score, Member: data})
	pipe.ZAdd(ctx, s.userKey(event.UserID), redis.Z{Score: score, Member: data})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *RedisActivityStore) ListByUser(ctx context.Context, userID string, since time.Time) ([]companionsdk.ActivityEvent, error) {
	return s.list(ctx, s.userKey(userID), since)
}

func (s *RedisActivityStore) ListSince(ctx context.Context, since time.Time) ([]companionsdk.ActivityEvent, error) {
	return s.list(ctx, s.allKey(), since)
}

func (s *RedisActivityStore) list(ctx context.Context, key string, since time.Time) ([]companionsdk.ActivityEvent, error) {
	members, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range events: %w", err)
	}

	events := make([]companionsdk.ActivityEvent, 0, len(members))
	for _, m := range members {
		var e companionsdk.ActivityEvent
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			continue // tolerate a malformed record rather than fail the query
		}
		events = append(events, e)
	}
	return events, nil
}

// ──────────────────────────────────────────────
// Trust progression state
// ──────────────────────────────────────────────

// RedisTrustStore implements progression.TrustStore on Redis. Trust
// updates run inside a WATCH/MULTI transaction so concurrent turns for
// the same user never lose an update.
type RedisTrustStore struct {
	client  redis.UniversalClient
	prefix  string
	retries int
}

// NewRedisTrustStore creates a trust store on the given client.
func NewRedisTrustStore(client redis.UniversalClient, config ...RedisConfig) *RedisTrustStore {
	cfg := RedisConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	return &RedisTrustStore{client: client, prefix: cfg.prefix(), retries: 16}
}

func (s *RedisTrustStore) trustKey(userID string) string {
	return s.prefix + ":trust:" + userID
}

func (s *RedisTrustStore) milestoneKey(userID string) string {
	return s.prefix + ":ms:" + userID
}

func (s *RedisTrustStore) eventKey(userID, name string) string {
	return s.prefix + ":evt:" + userID + ":" + name
}

func (s *RedisTrustStore) msgKey(userID string) string {
	return s.prefix + ":msgcount:" + userID
}

func (s *RedisTrustStore) Trust(ctx context.Context, userID string) (float64, error) {
	val, err := s.client.Get(ctx, s.trustKey(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get trust: %w", err)
	}
	trust, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse trust: %w", err)
	}
	return trust, nil
}

func (s *RedisTrustStore) UpdateTrust(ctx context.Context, userID string, fn func(current float64) float64) (float64, float64, error) {
	key := s.trustKey(userID)
	var old, updated float64

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		old = 0
		if err != redis.Nil {
			old, err = strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("parse trust: %w", err)
			}
		}
		updated = fn(old)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, strconv.FormatFloat(updated, 'f', -1, 64), 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.retries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return old, updated, nil
		}
		if err == redis.TxFailedErr {
			continue // another writer raced us, retry
		}
		return 0, 0, fmt.Errorf("trust transaction: %w", err)
	}
	return 0, 0, fmt.Errorf("trust transaction: contention on user %s", userID)
}

func (s *RedisTrustStore) MarkAchieved(ctx context.Context, userID, milestoneID string, at time.Time) (bool, error) {
	newly, err := s.client.HSetNX(ctx, s.milestoneKey(userID), milestoneID, at.Format(time.RFC3339Nano)).Result()
	if err != nil {
		return false, fmt.Errorf("mark achieved: %w", err)
	}
	return newly, nil
}

func (s *RedisTrustStore) Achieved(ctx context.Context, userID string) (map[string]time.Time, error) {
	fields, err := s.client.HGetAll(ctx, s.milestoneKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list achieved: %w", err)
	}
	result := make(map[string]time.Time, len(fields))
	for id, ts := range fields {
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		result[id] = at
	}
	return result, nil
}

func (s *RedisTrustStore) RecordExternalEvent(ctx context.Context, userID, name string, at time.Time) error {
	err := s.client.ZAdd(ctx, s.eventKey(userID, name), redis.Z{
		Score:  float64(at.UnixNano()),
		Member: at.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

func (s *RedisTrustStore) HasExternalEventSince(ctx context.Context, userID, name string, since time.Time) (bool, error) {
	count, err := s.client.ZCount(ctx, s.eventKey(userID, name),
		strconv.FormatInt(since.UnixNano(), 10), "+inf").Result()
	if err != nil {
		return false, fmt.Errorf("count events: %w", err)
	}
	return count > 0, nil
}

func (s *RedisTrustStore) IncrMessageCount(ctx context.Context, userID string) (int, error) {
	count, err := s.client.Incr(ctx, s.msgKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr message count: %w", err)
	}
	return int(count), nil
}

func (s *RedisTrustStore) MessageCount(ctx context.Context, userID string) (int, error) {
	val, err := s.client.Get(ctx, s.msgKey(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get message count: %w", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse message count: %w", err)
	}
	return count, nil
}
