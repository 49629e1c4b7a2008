package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/fetch"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalker(s *fakeSession, opts ...WalkerOption) *Walker {
	exec := fetch.NewExecutor(s, fetch.WithLogger(discard), fetch.WithSleep(noSleep))
	w := NewWalker(exec, fakeGuest, append([]WalkerOption{WithWalkerLogger(discard)}, opts...)...)
	w.sleep = noSleep
	return w
}

func byID(list []comment.Comment) map[string]comment.Comment {
	m := make(map[string]comment.Comment, len(list))
	for _, c := range list {
		m[c.CommentID] = c
	}
	return m
}

func TestWalkEndToEnd(t *testing.T) {
	first := item("c1", 0)
	first.ShareInfo = platform.ShareInfo{Title: "Vídeo de teste", URL: "https://fake.test/video/42"}

	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			0:  page(50, true, first, item("c2", 1)),
			50: page(50, false),
		},
		replies: map[string]map[int64]platform.ListResponse{
			"c2": {0: page(1, false, item("r1", 0))},
		},
	}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, got.Comments, 2)
	assert.Equal(t, "Vídeo de teste", got.Caption)
	assert.Equal(t, "https://fake.test/video/42", got.VideoURL)
	assert.Equal(t, 0, got.HasMore)

	c2 := got.Comments[1]
	assert.Equal(t, "c2", c2.CommentID)
	require.Len(t, c2.Replies, 1)
	assert.Equal(t, "r1", c2.Replies[0].CommentID)
	assert.Equal(t, "c2", c2.Replies[0].ParentCommentID)
	assert.False(t, c2.Replies[0].IsOrphanReply)

	assert.Empty(t, got.Comments[0].Replies)
	assert.Empty(t, got.Comments[0].ParentCommentID)
	assert.Equal(t, 1, s.callsTo("/replies"), "respostas só para quem tem total_reply > 0")
}

func TestWalkDeduplicatesAcrossPages(t *testing.T) {
	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			0: page(2, true, item("a", 0), item("b", 0)),
			2: page(4, true, item("b", 0), item("c", 0)),
			4: page(6, true, item("a", 0)),
			6: page(8, false, item("d", 0)),
		},
	}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)

	var ids []string
	for _, c := range got.Comments {
		ids = append(ids, c.CommentID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestResolveRepliesPaginatesAndTagsTopLevelParent(t *testing.T) {
	s := &fakeSession{
		replies: map[string]map[int64]platform.ListResponse{
			"c1": {
				0: page(3, true, item("r1", 0), item("r2", 0)),
				3: page(9, true, item("r2", 0), item("r3", 0)),
				9: page(12, false, item("r4", 0)),
			},
		},
	}

	got, err := newTestWalker(s).ResolveReplies(context.Background(), "42", "c1", "c1")
	require.NoError(t, err)

	require.Len(t, got, 4)
	for _, r := range got {
		assert.Equal(t, "c1", r.ParentCommentID)
	}
	assert.Equal(t, []int64{0, 3, 9}, []int64{s.calls[0].cursor, s.calls[1].cursor, s.calls[2].cursor})
}

func TestWalkReplyCountBound(t *testing.T) {
	// a API promete 5 respostas mas o cursor trava depois da primeira página
	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			0: page(1, false, item("c1", 5), item("c2", 2)),
		},
		replies: map[string]map[int64]platform.ListResponse{
			"c1": {0: page(0, true, item("r1", 0), item("r2", 0))},
			"c2": {0: page(7, false, item("r3", 0), item("r4", 0))},
		},
	}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)

	for _, c := range got.Comments {
		assert.LessOrEqual(t, len(c.Replies), c.TotalReply, c.CommentID)
	}
	m := byID(got.Comments)
	assert.Len(t, m["c1"].Replies, 2)
	assert.Len(t, m["c2"].Replies, 2)
}

func TestWalkReclassifiesInlineReplies(t *testing.T) {
	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			// i2 chega antes do pai; i3 aponta para um comentário que nunca aparece
			0:  page(10, true, item("p1", 0), inline("i1", "p1"), inline("i2", "p2")),
			10: page(20, false, item("p2", 1), inline("i3", "ghost")),
		},
		replies: map[string]map[int64]platform.ListResponse{
			"p2": {0: page(1, false, item("i2", 0))},
		},
	}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)

	var ids []string
	for _, c := range got.Comments {
		ids = append(ids, c.CommentID)
	}
	assert.Equal(t, []string{"p1", "p2", "i3"}, ids)

	m := byID(got.Comments)
	require.Len(t, m["p1"].Replies, 1)
	assert.Equal(t, "i1", m["p1"].Replies[0].CommentID)
	assert.Equal(t, "p1", m["p1"].Replies[0].ParentCommentID)

	require.Len(t, m["p2"].Replies, 1, "resposta inline e resolvida não duplicam")
	assert.Equal(t, "i2", m["p2"].Replies[0].CommentID)

	orphan := m["i3"]
	assert.True(t, orphan.IsOrphanReply)
	assert.Equal(t, "ghost", orphan.ParentCommentID)
}

func TestWalkStopsOnStatusCodeKeepingPartial(t *testing.T) {
	blocked := page(0, true, item("x", 0))
	blocked.StatusCode = 8
	blocked.StatusMsg = "rate limited"

	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			0:  page(50, true, item("a", 0)),
			50: blocked,
		},
	}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "a", got.Comments[0].CommentID)
}

func TestWalkTerminatesOnStuckCursor(t *testing.T) {
	n := 0
	s := &fakeSession{handler: func(c fetchCall) ([]byte, error) {
		n++
		return json.Marshal(page(c.cursor, true, item("c"+string(rune('a'+n)), 0)))
	}}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(s.calls), 2)
	assert.Len(t, got.Comments, 1)
}

func TestWalkPreservesResultsWhenFetchExhausts(t *testing.T) {
	s := &fakeSession{handler: func(c fetchCall) ([]byte, error) {
		if c.cursor == 0 {
			return json.Marshal(page(50, true, item("a", 0), item("b", 0)))
		}
		return nil, errors.New("net::ERR_CONNECTION_RESET")
	}}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, got.Comments, 2)
	assert.Len(t, s.calls, 1+1+fetch.DefaultMaxRetries)
}

func TestWalkRetriesMalformedJSON(t *testing.T) {
	attempts := 0
	s := &fakeSession{handler: func(c fetchCall) ([]byte, error) {
		attempts++
		if attempts == 1 {
			return []byte(`{"comments": [`), nil
		}
		return json.Marshal(page(1, false, item("a", 0)))
	}}

	got, err := newTestWalker(s).Walk(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)
	assert.Equal(t, 2, attempts)
}

func TestWalkPropagatesUninitializedContext(t *testing.T) {
	s := &fakeSession{handler: func(fetchCall) ([]byte, error) {
		return nil, fetch.ErrContextNotInitialized
	}}

	_, err := newTestWalker(s).Walk(context.Background(), "42")
	assert.ErrorIs(t, err, fetch.ErrContextNotInitialized)
	assert.Len(t, s.calls, 1)
}

func TestWalkEmitsProgress(t *testing.T) {
	s := &fakeSession{
		comments: map[int64]platform.ListResponse{
			0: page(5, true, item("a", 1)),
			5: page(9, false, item("b", 0)),
		},
		replies: map[string]map[int64]platform.ListResponse{
			"a": {0: page(1, false, item("ra", 0))},
		},
	}

	var events []Event
	w := newTestWalker(s, WithProgress(func(e Event) { events = append(events, e) }))
	_, err := w.Walk(context.Background(), "42")
	require.NoError(t, err)

	var stages []Stage
	for _, e := range events {
		stages = append(stages, e.Stage)
	}
	assert.Equal(t, []Stage{StageReplies, StagePage, StagePage}, stages)
	last := events[len(events)-1]
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, 2, last.Comments)
	assert.Equal(t, 1, last.Replies)
}
