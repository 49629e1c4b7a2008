package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore compartilha sessões entre workers: chave argus:session:<platform>.
// TTL zero mantém a chave sem expiração.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func redisKey(platform string) string {
	return "argus:session:" + platform
}

func (s *RedisStore) Load(ctx context.Context, platform string) (*State, error) {
	data, err := s.rdb.Get(ctx, redisKey(platform)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("lendo sessão %s do redis: %w", platform, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("sessão %s corrompida: %w", platform, err)
	}
	if len(st.Cookies) == 0 {
		return nil, ErrNoSession
	}
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, platform string, cookies []Cookie) error {
	data, err := json.Marshal(State{Platform: platform, SavedAt: s.now().UTC(), Cookies: cookies})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey(platform), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("salvando sessão %s no redis: %w", platform, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, platform string) error {
	return s.rdb.Del(ctx, redisKey(platform)).Err()
}
