// Package scrape é o motor de paginação de comentários: percorre a lista de comentários de topo,
// resolve as respostas de cada um e monta a árvore final.
package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/fetch"
	"github.com/loviiin/argus-comments/internal/paginate"
	"github.com/loviiin/argus-comments/internal/platform"
)

// Session é o contexto de execução autenticado (uma aba do navegador).
// Fetch roda dentro da página, com os cookies da sessão.
type Session interface {
	fetch.Fetcher
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	URL() string
	Close() error
}

// Opener cria uma Session para a plataforma. applied indica se uma sessão salva foi carregada.
type Opener interface {
	Open(ctx context.Context, p *platform.Platform) (sess Session, applied bool, err error)
}

// Options controla paginação e retry. Zeros viram os padrões.
type Options struct {
	DefaultPlatform string
	PageSize        int
	PageDelay       time.Duration
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
}

func (o *Options) setDefaults() {
	if o.DefaultPlatform == "" {
		o.DefaultPlatform = platform.TikTok.Name
	}
	if o.PageSize <= 0 {
		o.PageSize = paginate.DefaultPageSize
	}
	if o.PageDelay < 0 {
		o.PageDelay = 0
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = fetch.DefaultMaxRetries
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = fetch.DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = fetch.DefaultMaxDelay
	}
}

// DefaultOptions são os valores de produção: 50 por página, 100ms entre páginas, 3 retries de 1s a 4s.
func DefaultOptions() Options {
	o := Options{PageDelay: DefaultPageDelay}
	o.setDefaults()
	return o
}

// Result é o Comments acompanhado de onde ele veio.
type Result struct {
	Platform string
	VideoID  string
	Comments *comment.Comments
}

type Scraper struct {
	opener Opener
	opts   Options
	logger *log.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(opener Opener, opts Options, logger *log.Logger) *Scraper {
	opts.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Scraper{opener: opener, opts: opts, logger: logger}
}

// Scrape extrai os comentários de um vídeo. É a única operação exposta do motor.
func (s *Scraper) Scrape(ctx context.Context, identifier string, progress ProgressFunc) (*comment.Comments, error) {
	res, err := s.Run(ctx, identifier, progress)
	if err != nil {
		return nil, err
	}
	return res.Comments, nil
}

// Run faz o mesmo que Scrape e também devolve a plataforma e o id resolvidos.
//
// A sessão é aberta aqui e fechada em todos os caminhos de saída. Falhas de paginação viram
// resultado parcial; só erros de setup (identificador, navegador, link curto) e de contrato voltam como erro.
func (s *Scraper) Run(ctx context.Context, identifier string, progress ProgressFunc) (*Result, error) {
	target, err := platform.Resolve(identifier, s.opts.DefaultPlatform)
	if err != nil {
		return nil, err
	}
	p := target.Platform
	progress.emit(Event{Stage: StageStart, Platform: p.Name, VideoID: target.VideoID, Message: identifier})

	sess, applied, err := s.opener.Open(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("abrindo sessão %s: %w", p.Name, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Printf("[Scraper] ⚠️  erro ao fechar sessão: %v", err)
		}
	}()

	videoID := target.VideoID
	if target.NeedsRedirect() {
		if err := sess.Navigate(ctx, target.ShortLink); err != nil {
			return nil, fmt.Errorf("resolvendo link curto %s: %w", target.ShortLink, err)
		}
		videoID = platform.ExtractVideoID(sess.URL())
		if videoID == "" {
			return nil, fmt.Errorf("%w: link curto %s levou a %s", platform.ErrUnsupportedIdentifier, target.ShortLink, sess.URL())
		}
		s.logger.Printf("[Scraper] link curto %s -> vídeo %s", target.ShortLink, videoID)
	} else if err := sess.Navigate(ctx, p.VideoURL(videoID)); err != nil {
		s.logger.Printf("[Scraper] ⚠️  navegação para o vídeo %s falhou: %v (seguindo com a API)", videoID, err)
	}
	progress.emit(Event{Stage: StageResolved, Platform: p.Name, VideoID: videoID})

	html, err := sess.HTML(ctx)
	if err != nil {
		s.logger.Printf("[Scraper] ⚠️  não foi possível ler o HTML da página: %v", err)
	}
	wall := platform.DetectLoginWall(html, p.LoginWallSelectors)

	authRequired := func(reason string) *Result {
		s.logger.Printf("[Scraper] 🔒 %s %s: %s", p.Name, videoID, reason)
		progress.emit(Event{Stage: StageAuth, Platform: p.Name, VideoID: videoID, Message: p.AuthMessage})
		return &Result{Platform: p.Name, VideoID: videoID, Comments: comment.AuthRequired(p.AuthMessage)}
	}

	if p.RequiresLogin && wall && !applied {
		return authRequired("muro de login sem sessão salva"), nil
	}

	exec := fetch.NewExecutor(sess,
		fetch.WithMaxRetries(s.opts.MaxRetries),
		fetch.WithBackoff(s.opts.BaseDelay, s.opts.MaxDelay),
		fetch.WithLogger(s.logger),
		fetch.WithSleep(s.sleep),
	)
	w := NewWalker(exec, p,
		WithPageSize(s.opts.PageSize),
		WithPageDelay(s.opts.PageDelay),
		WithWalkerLogger(s.logger),
		WithProgress(progress),
	)
	w.sleep = s.sleep

	res, err := w.walk(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("paginando %s %s: %w", p.Name, videoID, err)
	}

	if len(res.comments) == 0 && p.RequiresLogin && !applied {
		return authRequired("nenhum comentário sem sessão salva (provável falha de login)"), nil
	}

	caption := res.caption
	if caption == "" {
		caption = platform.MetaCaption(html)
	}
	videoURL := res.videoURL
	if videoURL == "" {
		videoURL = p.VideoURL(videoID)
	}

	out := comment.NewComments(caption, videoURL, res.comments)
	progress.emit(Event{Stage: StageDone, Platform: p.Name, VideoID: videoID, Comments: len(out.Comments), Replies: out.Total() - len(out.Comments)})
	return &Result{Platform: p.Name, VideoID: videoID, Comments: out}, nil
}
