package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyspace = "accountLockouts"

// Storage keeps lockout records in Redis, one JSON document per identity.
// The TTL only exists so abandoned records age out; expiry of the lock
// itself is decided by the record's LockedUntil field.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr string, ttl time.Duration) *Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return &Storage{client: client, ttl: ttl}
}

func lockoutKey(identity string) string {
	return fmt.Sprintf("%s:%s", keyspace, identity)
}

func (s *Storage) LockoutRecord(ctx context.Context, identity string) (models.LockoutRecord, error) {
	const op = "storage.redis.LockoutRecord"

	data, err := s.client.Get(ctx, lockoutKey(identity)).Result()
	if err != nil {
		if err == redis.Nil {
			return models.LockoutRecord{}, fmt.Errorf("%s: %w", op, storage.ErrLockoutNotFound)
		}
		return models.LockoutRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	var record models.LockoutRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return models.LockoutRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

func (s *Storage) SaveLockoutRecord(ctx context.Context, identity string, record models.LockoutRecord) error {
	const op = "storage.redis.SaveLockoutRecord"

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.client.Set(ctx, lockoutKey(identity), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RemoveLockoutRecord(ctx context.Context, identity string) error {
	const op = "storage.redis.RemoveLockoutRecord"

	if err := s.client.Del(ctx, lockoutKey(identity)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Stop() error {
	const op = "storage.redis.Stop"

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
