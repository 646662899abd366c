// Package redis provides a SurfaceStore and a DistributedLocker backed by
// Redis, for running several binding replicas against one shared record set.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/easelhq/easel/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "easel:"

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix for surface records. The default is "easel:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiration on surface records. Zero (the default) keeps a
// record until Delete. With a TTL, surfaces whose process died without
// stopping them disappear on their own once the TTL lapses.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// Store implements ports.SurfaceStore on Redis. Records are JSON documents
// keyed by surface ID; a sorted set at prefix+"index" holds every live ID,
// scored by expiry so List can prune lapsed entries without a SCAN.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewFromClient creates a Store on an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id domain.SurfaceID) string {
	return s.prefix + id.String()
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the record and registers its ID in the index. Records
// without a TTL are scored +inf so pruning never touches them.
func (s *Store) Save(ctx context.Context, surface *domain.Surface) error {
	data, err := json.Marshal(surface)
	if err != nil {
		return fmt.Errorf("failed to encode surface %s: %w", surface.ID, err)
	}

	score := math.Inf(1)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).UnixMilli())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(surface.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: surface.ID.String()})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save surface %s: %w", surface.ID, err)
	}
	return nil
}

// Load retrieves a record. The JSON round trip already isolates the caller
// from the store, so no copying happens here.
func (s *Store) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("surface %s: %w", id, domain.ErrSurfaceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load surface %s: %w", id, err)
	}

	var surface domain.Surface
	if err := json.Unmarshal(data, &surface); err != nil {
		return nil, fmt.Errorf("failed to decode surface %s: %w", id, err)
	}
	return &surface, nil
}

// Delete removes the record and its index entry. Absent records are not an
// error.
func (s *Store) Delete(ctx context.Context, id domain.SurfaceID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete surface %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of all live records. Index entries whose TTL lapsed
// are pruned here; Redis already dropped their record keys.
func (s *Store) List(ctx context.Context) ([]domain.SurfaceID, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune surface index: %w", err)
	}

	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces: %w", err)
	}

	ids := make([]domain.SurfaceID, 0, len(members))
	for _, member := range members {
		id, err := domain.ParseSurfaceID(member)
		if err != nil {
			return nil, fmt.Errorf("corrupt surface index entry %q: %w", member, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
