// Package redis provides a Redis SlotStore and a Redis DistributedLocker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "disconnected:slot:"

// Store implements ports.SlotStore using Redis.
// Each slot is a JSON string; a sorted set scored by slot timestamp indexes them.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for slots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for slots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Put writes the slot and indexes it by timestamp in one pipeline.
func (s *Store) Put(ctx context.Context, slot domain.SaveSlot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to marshal slot: %w", err)
	}

	pipe := s.client.Pipeline()
	// 0 means no expiration.
	pipe.Set(ctx, s.key(slot.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(slot.Timestamp),
		Member: slot.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves a slot.
func (s *Store) Get(ctx context.Context, id string) (domain.SaveSlot, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.SaveSlot{}, domain.ErrSlotNotFound
		}
		return domain.SaveSlot{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(id, val)
}

// Delete removes the slot and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the indexed slots, newest first.
// Index entries whose key has expired are pruned lazily.
func (s *Store) List(ctx context.Context) ([]domain.SaveSlot, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	if len(ids) == 0 {
		return []domain.SaveSlot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}

	slots := make([]domain.SaveSlot, 0, len(ids))
	var expired []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		slot, err := decode(ids[i], raw)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired slots: %w", err)
		}
	}

	memory.SortNewestFirst(slots)
	return slots, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(id, val string) (domain.SaveSlot, error) {
	var slot domain.SaveSlot
	if err := json.Unmarshal([]byte(val), &slot); err != nil {
		return domain.SaveSlot{}, fmt.Errorf("%w: slot %s: %v", domain.ErrCorruptSave, id, err)
	}
	return slot, nil
}
