package scrape

import (
	"context"
	"log"
	"time"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/fetch"
	"github.com/loviiin/argus-comments/internal/paginate"
	"github.com/loviiin/argus-comments/internal/platform"
)

// DefaultPageDelay é a pausa entre páginas de comentários de topo.
const DefaultPageDelay = 100 * time.Millisecond

// Walker pagina os endpoints de comentários e respostas de uma plataforma
// usando um Executor já ligado a uma sessão aberta.
type Walker struct {
	exec      *fetch.Executor
	platform  *platform.Platform
	pageSize  int
	pageDelay time.Duration
	logger    *log.Logger
	progress  ProgressFunc
	sleep     func(ctx context.Context, d time.Duration) error
}

type WalkerOption func(*Walker)

func WithPageSize(n int) WalkerOption {
	return func(w *Walker) {
		if n > 0 {
			w.pageSize = n
		}
	}
}

// WithPageDelay aceita zero para desligar a pausa.
func WithPageDelay(d time.Duration) WalkerOption {
	return func(w *Walker) {
		if d >= 0 {
			w.pageDelay = d
		}
	}
}

func WithWalkerLogger(l *log.Logger) WalkerOption {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) WalkerOption {
	return func(w *Walker) { w.progress = fn }
}

func NewWalker(exec *fetch.Executor, p *platform.Platform, opts ...WalkerOption) *Walker {
	w := &Walker{
		exec:      exec,
		platform:  p,
		pageSize:  paginate.DefaultPageSize,
		pageDelay: DefaultPageDelay,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) paginator(name string, delay time.Duration) *paginate.Paginator[platform.Item] {
	pg := paginate.New[platform.Item](name)
	pg.Size = w.pageSize
	pg.Delay = delay
	pg.Logger = w.logger
	if w.sleep != nil {
		pg.WithSleep(w.sleep)
	}
	return pg
}

// ResolveReplies pagina as respostas de commentID até o fim.
// Toda resposta sai com parent_comment_id = parentCommentID (o comentário de topo).
func (w *Walker) ResolveReplies(ctx context.Context, videoID, commentID, parentCommentID string) ([]comment.Comment, error) {
	seen := map[string]struct{}{}
	var out []comment.Comment

	pg := w.paginator("replies "+commentID, 0)
	_, err := pg.Walk(ctx, func(ctx context.Context, cursor int64, size int) (*paginate.Page[platform.Item], error) {
		var resp platform.ListResponse
		if err := w.exec.FetchJSON(ctx, w.platform.RepliesURL(videoID, commentID, cursor, size), &resp); err != nil {
			return nil, err
		}
		return resp.Page(), nil
	}, func(items []platform.Item) error {
		for _, it := range items {
			if _, dup := seen[it.CID]; dup || it.CID == "" {
				continue
			}
			seen[it.CID] = struct{}{}
			out = append(out, it.Comment(parentCommentID, nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type walkResult struct {
	caption  string
	videoURL string
	comments []comment.Comment
	summary  paginate.Summary
}

// Walk pagina os comentários de topo do vídeo até o fim, resolvendo as respostas de cada um.
func (w *Walker) Walk(ctx context.Context, videoID string) (*comment.Comments, error) {
	res, err := w.walk(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return comment.NewComments(res.caption, res.videoURL, res.comments), nil
}

func (w *Walker) walk(ctx context.Context, videoID string) (*walkResult, error) {
	t := newTree()
	page := 0

	pg := w.paginator("comments "+videoID, w.pageDelay)
	sum, err := pg.Walk(ctx, func(ctx context.Context, cursor int64, size int) (*paginate.Page[platform.Item], error) {
		var resp platform.ListResponse
		if err := w.exec.FetchJSON(ctx, w.platform.CommentsURL(videoID, cursor, size), &resp); err != nil {
			return nil, err
		}
		return resp.Page(), nil
	}, func(items []platform.Item) error {
		page++
		if page == 1 && len(items) > 0 {
			t.capture(items[0].ShareInfo)
		}

		for _, it := range items {
			if it.CID == "" {
				continue
			}
			if !t.markSeen(it.CID) {
				w.logger.Printf("[Walker] comentário %s repetido na página %d, ignorando", it.CID, page)
				continue
			}
			if it.ReplyTarget() != "" {
				t.addInline(it)
				continue
			}

			var replies []comment.Comment
			if it.ReplyCommentTotal > 0 {
				var err error
				replies, err = w.ResolveReplies(ctx, videoID, it.CID, it.CID)
				if err != nil {
					return err
				}
				w.progress.emit(Event{
					Stage:    StageReplies,
					Platform: w.platform.Name,
					VideoID:  videoID,
					Page:     page,
					Comments: t.topCount(),
					Replies:  t.replies + len(replies),
					Message:  it.CID,
				})
			}
			t.addTop(it, replies)
		}

		w.progress.emit(Event{
			Stage:    StagePage,
			Platform: w.platform.Name,
			VideoID:  videoID,
			Page:     page,
			Comments: t.topCount(),
			Replies:  t.replies,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	list := t.materialize()
	w.logger.Printf("[Walker] %s %s: %d comentários de topo em %d páginas (%s)", w.platform.Name, videoID, len(list), sum.Pages, sum.Reason)
	return &walkResult{
		caption:  t.caption,
		videoURL: t.videoURL,
		comments: list,
		summary:  sum,
	}, nil
}
