package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/repository"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/pkg/dedup"
	"github.com/loviiin/argus-comments/pkg/metrics"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	res   *scrape.Result
	err   error
	calls []string
}

func (f *fakeScraper) Run(_ context.Context, identifier string, _ scrape.ProgressFunc) (*scrape.Result, error) {
	f.calls = append(f.calls, identifier)
	return f.res, f.err
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

type fakeStore struct {
	saved int
	stats repository.SaveStats
	err   error
}

func (s *fakeStore) Save(context.Context, string, string, *comment.Comments) (repository.SaveStats, error) {
	s.saved++
	return s.stats, s.err
}

type fakeIndexer struct{ indexed int }

func (i *fakeIndexer) IndexComments(_, _ string, res *comment.Comments) (int, error) {
	i.indexed++
	return res.Total(), nil
}

type fakeMsg struct{ acks, naks int }

func (m *fakeMsg) Ack(...nats.AckOpt) error { m.acks++; return nil }
func (m *fakeMsg) Nak(...nats.AckOpt) error { m.naks++; return nil }

func sampleResult() *scrape.Result {
	return &scrape.Result{
		Platform: "tiktok",
		VideoID:  "7301",
		Comments: comment.NewComments("legenda", "https://www.tiktok.com/@a/video/7301", []comment.Comment{
			{CommentID: "c1", TotalReply: 1, Replies: []comment.Comment{{CommentID: "r1", ParentCommentID: "c1"}}},
			{CommentID: "c2"},
		}),
	}
}

type harness struct {
	w     *Worker
	mr    *miniredis.Miniredis
	sc    *fakeScraper
	pub   *fakePublisher
	store *fakeStore
	idx   *fakeIndexer
}

func newHarness(t *testing.T) *harness {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := &harness{
		mr:    mr,
		sc:    &fakeScraper{res: sampleResult()},
		pub:   &fakePublisher{},
		store: &fakeStore{},
		idx:   &fakeIndexer{},
	}
	h.w = &Worker{
		ID:              "t",
		ResultSubject:   "data.comments_extracted",
		DefaultPlatform: "tiktok",
		Scraper:         h.sc,
		Publisher:       h.pub,
		Store:           h.store,
		Indexer:         h.idx,
		Dedup:           dedup.NewDeduplicator(rdb, 1),
		Counter:         metrics.NewCounter(rdb),
		Logger:          log.New(io.Discard, "", 0),
	}
	return h
}

func (h *harness) counter(t *testing.T, key string) string {
	v, err := h.mr.Get(key)
	if err != nil {
		return "0"
	}
	return v
}

func TestProcessPublishesAndMarks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.w.Process(ctx, Job{JobID: "j1", Identifier: "7301"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, out)

	require.Len(t, h.pub.payloads, 1)
	assert.Equal(t, "data.comments_extracted", h.pub.subjects[0])

	var got ResultPayload
	require.NoError(t, json.Unmarshal(h.pub.payloads[0], &got))
	assert.Equal(t, "j1", got.JobID)
	assert.Equal(t, "tiktok", got.Platform)
	assert.Equal(t, "7301", got.VideoID)
	require.Len(t, got.Result.Comments, 2)
	assert.Equal(t, "c1", got.Result.Comments[0].Replies[0].ParentCommentID)

	assert.Equal(t, 1, h.store.saved)
	assert.Equal(t, 1, h.idx.indexed)
	assert.True(t, h.mr.Exists(dedup.Key(dedup.PrefixProcessed, "tiktok:7301")))
	assert.False(t, h.mr.Exists(dedup.Key(dedup.PrefixLock, "tiktok:7301")))
	assert.Equal(t, "1", h.counter(t, metrics.KeyJobsOK))
	assert.Equal(t, "3", h.counter(t, metrics.KeyCommentsScraped))

	// segundo job do mesmo vídeo é ignorado sem abrir o navegador
	out, err = h.w.Process(ctx, Job{JobID: "j2", Identifier: "https://www.tiktok.com/@a/video/7301"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Len(t, h.sc.calls, 1)
	assert.Equal(t, "1", h.counter(t, metrics.KeyJobsSkipped))

	// Force refaz
	out, err = h.w.Process(ctx, Job{JobID: "j3", Identifier: "7301", Force: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, out)
	assert.Len(t, h.sc.calls, 2)
}

func TestProcessSkipsLockedVideo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, err := h.w.Dedup.TryLock(ctx, "tiktok:7301", 0)
	require.NoError(t, err)
	require.True(t, ok)

	out, err := h.w.Process(ctx, Job{Identifier: "7301"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Empty(t, h.sc.calls)
}

func TestProcessAuthRequiredIsNotMarked(t *testing.T) {
	h := newHarness(t)
	h.sc.res = &scrape.Result{Platform: "douyin", VideoID: "9", Comments: comment.AuthRequired("login")}

	out, err := h.w.Process(context.Background(), Job{Identifier: "https://www.douyin.com/video/9"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthRequired, out)
	assert.Len(t, h.pub.payloads, 1)
	assert.False(t, h.mr.Exists(dedup.Key(dedup.PrefixProcessed, "douyin:9")))
	assert.Equal(t, "1", h.counter(t, metrics.KeyAuthRequired))
}

func TestProcessErrors(t *testing.T) {
	h := newHarness(t)
	h.sc.err = errors.New("browser morreu")

	_, err := h.w.Process(context.Background(), Job{Identifier: "7301"})
	require.Error(t, err)
	assert.Empty(t, h.pub.payloads)
	assert.Equal(t, "1", h.counter(t, metrics.KeyJobsFailed))

	h.sc.err = nil
	h.pub.err = errors.New("nats fora")
	_, err = h.w.Process(context.Background(), Job{Identifier: "7301"})
	require.Error(t, err)
	assert.False(t, h.mr.Exists(dedup.Key(dedup.PrefixProcessed, "tiktok:7301")))
}

func TestProcessStoreFailureStillPublishes(t *testing.T) {
	h := newHarness(t)
	h.store.err = errors.New("postgres fora")

	out, err := h.w.Process(context.Background(), Job{Identifier: "7301"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, out)
	assert.Len(t, h.pub.payloads, 1)
}

func TestHandleAckNak(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bad := &fakeMsg{}
	_, err := h.w.Handle(ctx, []byte(`{"job_id": 1`), bad)
	assert.ErrorIs(t, err, ErrInvalidJob)
	assert.Equal(t, 1, bad.acks)

	empty := &fakeMsg{}
	_, err = h.w.Handle(ctx, []byte(`{"job_id": "x"}`), empty)
	assert.ErrorIs(t, err, ErrInvalidJob)
	assert.Equal(t, 1, empty.acks)

	good := &fakeMsg{}
	out, err := h.w.Handle(ctx, []byte(`{"job_id": "x", "identifier": "7301"}`), good)
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, out)
	assert.Equal(t, 1, good.acks)

	h.sc.err = errors.New("falhou")
	failed := &fakeMsg{}
	_, err = h.w.Handle(ctx, []byte(`{"identifier": "7302"}`), failed)
	require.Error(t, err)
	assert.Equal(t, 1, failed.naks)
	assert.Zero(t, failed.acks)
}

func TestShortLinkSkipsPreCheck(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "", h.w.dedupID(Job{Identifier: "https://vm.tiktok.com/ZMabc/"}))
	assert.Equal(t, "tiktok:7301", h.w.dedupID(Job{Identifier: "7301"}))
	assert.Equal(t, "", h.w.dedupID(Job{Identifier: "nada"}))
}
