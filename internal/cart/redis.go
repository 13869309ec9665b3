package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinexplorer/internal/selection"
)

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = 30 * time.Minute

// RedisStore keeps each draft as a JSON string under
// "<prefix>:<userID>:<sessionID>". Every save refreshes the TTL.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a store on rdb. A non-positive ttl selects
// DefaultTTL and an empty prefix selects "cart".
func NewRedisStore(rdb *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "cart"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(userID, sessionID uint64) string {
	return fmt.Sprintf("%s:%d:%d", s.prefix, userID, sessionID)
}

func (s *RedisStore) Load(ctx context.Context, userID, sessionID uint64) (selection.Draft, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return selection.Draft{}, ErrNotFound
	}
	if err != nil {
		return selection.Draft{}, err
	}
	var d selection.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return selection.Draft{}, fmt.Errorf("decode cart: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, userID, sessionID uint64, d selection.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(userID, sessionID), raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID, sessionID uint64) error {
	return s.rdb.Del(ctx, s.key(userID, sessionID)).Err()
}
