package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"caregame/internal/models"
)

const redisKeyPrefix = "caregame"

// RedisSessionStore is a remote multi-device session store. Each child has a
// Redis list of JSON records; a per-child counter hands out revisions.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to Redis and checks the connection
func NewRedisSessionStore(ctx context.Context, address, password string) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessionStore{client: client}, nil
}

// Close closes the Redis connection
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func sessionsKey(childID string) string {
	return fmt.Sprintf("%s:sessions:%s", redisKeyPrefix, childID)
}

func revisionKey(childID string) string {
	return fmt.Sprintf("%s:revision:%s", redisKeyPrefix, childID)
}

// LoadAll returns the child's sessions in insertion order. Entries that fail
// to decode are skipped.
func (s *RedisSessionStore) LoadAll(ctx context.Context, childID string) ([]models.SessionRecord, error) {
	childID = models.NormalizeChildID(childID)
	raw, err := s.client.LRange(ctx, sessionsKey(childID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for %s: %w", childID, err)
	}

	records := make([]models.SessionRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.SessionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			log.Printf("Skipping malformed redis session for %s: %v", childID, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// AppendOne stores the record under the child and returns it with its revision set
func (s *RedisSessionStore) AppendOne(ctx context.Context, childID string, record models.SessionRecord) (models.SessionRecord, error) {
	childID = models.NormalizeChildID(childID)
	rev, err := s.client.Incr(ctx, revisionKey(childID)).Result()
	if err != nil {
		return record, fmt.Errorf("failed to allocate revision: %w", err)
	}
	record.Revision = rev

	data, err := json.Marshal(record)
	if err != nil {
		return record, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.RPush(ctx, sessionsKey(childID), data).Err(); err != nil {
		return record, fmt.Errorf("failed to append session: %w", err)
	}
	return record, nil
}
