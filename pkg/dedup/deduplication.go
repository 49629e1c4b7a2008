package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefixos usados pelos serviços de comentários.
const (
	PrefixProcessed = "comments_processed"
	PrefixLock      = "comments_lock"
)

// Deduplicator handles Redis deduplication checks across services
type Deduplicator struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDeduplicator creates a new shared instance. If ttlHours is 0, defaults to 48 hours.
func NewDeduplicator(rdb *redis.Client, ttlHours int) *Deduplicator {
	if ttlHours <= 0 {
		ttlHours = 48
	}
	return &Deduplicator{
		rdb: rdb,
		ttl: time.Duration(ttlHours) * time.Hour,
	}
}

// Key monta a chave argus:<prefix>:<id>.
func Key(prefixType, id string) string {
	return fmt.Sprintf("argus:%s:%s", prefixType, id)
}

// MarkAsSeen marks an entity (like platform:videoID) as seen under a prefix type (e.g. "comments_processed")
func (d *Deduplicator) MarkAsSeen(ctx context.Context, prefixType string, id string) error {
	return d.rdb.Set(ctx, Key(prefixType, id), "1", d.ttl).Err()
}

// CheckIfProcessed returns true if the entity string exists under the prefix type
func (d *Deduplicator) CheckIfProcessed(ctx context.Context, prefixType string, id string) (bool, error) {
	exists, err := d.rdb.Exists(ctx, Key(prefixType, id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// TryLock reserva id por ttl (SET NX). Devolve false se outro worker já está com ele.
func (d *Deduplicator) TryLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return d.rdb.SetNX(ctx, Key(PrefixLock, id), "1", ttl).Result()
}

// Unlock libera o lock de id.
func (d *Deduplicator) Unlock(ctx context.Context, id string) error {
	return d.rdb.Del(ctx, Key(PrefixLock, id)).Err()
}

// RDB returns the internal redis client for external usages (metrics, sessions)
func (d *Deduplicator) RDB() *redis.Client {
	return d.rdb
}

// Close closes the underlying redis connection
func (d *Deduplicator) Close() error {
	return d.rdb.Close()
}
