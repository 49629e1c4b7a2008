package dedup

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDedup(t *testing.T) (*Deduplicator, *miniredis.Miniredis) {
	t.Helper()
	// MiniRedis para rodar os testes sem precisar do Redis real
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Erro ao iniciar miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDeduplicator(rdb, 24), mr
}

func TestMarkAndCheckByPrefix(t *testing.T) {
	d, mr := newTestDedup(t)
	ctx := context.Background()

	id := "tiktok:7610549811661540615"
	if err := d.MarkAsSeen(ctx, PrefixProcessed, id); err != nil {
		t.Fatalf("Erro no MarkAsSeen: %v", err)
	}

	// prefixo errado não enxerga a marca
	if seen, _ := d.CheckIfProcessed(ctx, "seen", id); seen {
		t.Errorf("prefixo 'seen' retornou true para um id marcado em %s", PrefixProcessed)
	}
	if seen, _ := d.CheckIfProcessed(ctx, PrefixProcessed, id); !seen {
		t.Errorf("id marcado não foi encontrado")
	}

	ttl := mr.TTL(Key(PrefixProcessed, id))
	if ttl != 24*time.Hour {
		t.Errorf("TTL esperado 24h, veio %v", ttl)
	}

	mr.FastForward(25 * time.Hour)
	if seen, _ := d.CheckIfProcessed(ctx, PrefixProcessed, id); seen {
		t.Errorf("marca deveria expirar depois do TTL")
	}
}

func TestTryLock(t *testing.T) {
	d, _ := newTestDedup(t)
	ctx := context.Background()

	ok, err := d.TryLock(ctx, "douyin:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("primeiro lock deveria funcionar: ok=%v err=%v", ok, err)
	}
	ok, _ = d.TryLock(ctx, "douyin:1", time.Minute)
	if ok {
		t.Errorf("segundo lock no mesmo id deveria falhar")
	}
	if err := d.Unlock(ctx, "douyin:1"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, _ = d.TryLock(ctx, "douyin:1", time.Minute)
	if !ok {
		t.Errorf("lock deveria funcionar depois do Unlock")
	}
}
