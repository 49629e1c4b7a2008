// Package worker consome jobs de comentários do NATS JetStream, roda o scraping e publica,
// grava e indexa o resultado.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/loviiin/argus-comments/internal/repository"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/pkg/dedup"
	"github.com/loviiin/argus-comments/pkg/metrics"
)

// Job é o payload recebido do tópico jobs.comments.
type Job struct {
	JobID      string `json:"job_id"`
	Identifier string `json:"identifier"`
	// Force ignora a marca de "já processado".
	Force bool `json:"force,omitempty"`
}

// ResultPayload é o payload publicado no tópico data.comments_extracted.
type ResultPayload struct {
	JobID      string            `json:"job_id"`
	Identifier string            `json:"identifier"`
	Platform   string            `json:"platform"`
	VideoID    string            `json:"video_id"`
	ScrapedAt  time.Time         `json:"scraped_at"`
	Result     *comment.Comments `json:"result"`
}

type Scraper interface {
	Run(ctx context.Context, identifier string, progress scrape.ProgressFunc) (*scrape.Result, error)
}

type Publisher interface {
	Publish(subject string, data []byte) error
}

type Store interface {
	Save(ctx context.Context, platform, videoID string, res *comment.Comments) (repository.SaveStats, error)
}

type Indexer interface {
	IndexComments(platform, videoID string, res *comment.Comments) (int, error)
}

// Outcome diz o que aconteceu com um job processado sem erro.
type Outcome int

const (
	OutcomePublished Outcome = iota
	OutcomeSkipped
	OutcomeAuthRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "publicado"
	case OutcomeSkipped:
		return "ignorado"
	case OutcomeAuthRequired:
		return "login necessário"
	default:
		return "desconhecido"
	}
}

var ErrInvalidJob = errors.New("job inválido")

// Worker processa um job por vez. Store, Indexer, Dedup e Counter são opcionais.
type Worker struct {
	ID              string
	ResultSubject   string
	DefaultPlatform string

	Scraper   Scraper
	Publisher Publisher
	Store     Store
	Indexer   Indexer
	Dedup     *dedup.Deduplicator
	Counter   *metrics.Counter
	Logger    *log.Logger

	// LockTTL limita quanto tempo um vídeo fica reservado para este worker.
	LockTTL time.Duration
}

func (w *Worker) logf(format string, args ...any) {
	l := w.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("[Worker %s] "+format, append([]any{w.ID}, args...)...)
}

// DecodeJob valida o JSON de um job.
func DecodeJob(data []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if job.Identifier == "" {
		return job, fmt.Errorf("%w: identifier vazio", ErrInvalidJob)
	}
	return job, nil
}

// dedupID identifica o vídeo antes do scraping; links curtos só são conhecidos depois.
func (w *Worker) dedupID(job Job) string {
	t, err := platform.Resolve(job.Identifier, w.DefaultPlatform)
	if err != nil || t.NeedsRedirect() {
		return ""
	}
	return t.Platform.Name + ":" + t.VideoID
}

// Process roda um job completo: dedup, scraping, publicação, gravação e indexação.
// Só o publish é obrigatório; falhas de banco e busca são logadas e não devolvem o job para a fila.
func (w *Worker) Process(ctx context.Context, job Job) (Outcome, error) {
	key := w.dedupID(job)
	if key != "" && w.Dedup != nil {
		if !job.Force {
			done, err := w.Dedup.CheckIfProcessed(ctx, dedup.PrefixProcessed, key)
			if err != nil {
				w.logf("⚠️  erro redis CheckIfProcessed %s: %v", key, err)
			} else if done {
				w.logf("⏩ skip (já processado): %s", key)
				w.Counter.Inc(ctx, metrics.KeyJobsSkipped)
				return OutcomeSkipped, nil
			}
		}
		ttl := w.LockTTL
		if ttl <= 0 {
			ttl = 15 * time.Minute
		}
		locked, err := w.Dedup.TryLock(ctx, key, ttl)
		if err == nil && !locked {
			w.logf("⏩ skip (outro worker está processando): %s", key)
			w.Counter.Inc(ctx, metrics.KeyJobsSkipped)
			return OutcomeSkipped, nil
		}
		if err == nil {
			defer w.Dedup.Unlock(context.WithoutCancel(ctx), key)
		}
	}

	res, err := w.Scraper.Run(ctx, job.Identifier, nil)
	if err != nil {
		w.Counter.Inc(ctx, metrics.KeyJobsFailed)
		return 0, fmt.Errorf("scraping %s: %w", job.Identifier, err)
	}
	vid := res.Platform + ":" + res.VideoID

	payload := ResultPayload{
		JobID:      job.JobID,
		Identifier: job.Identifier,
		Platform:   res.Platform,
		VideoID:    res.VideoID,
		ScrapedAt:  time.Now().UTC(),
		Result:     res.Comments,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload %s: %w", vid, err)
	}
	if err := w.Publisher.Publish(w.ResultSubject, data); err != nil {
		w.Counter.Inc(ctx, metrics.KeyJobsFailed)
		return 0, fmt.Errorf("publicando resultado %s: %w", vid, err)
	}
	w.logf("✅ Publicado: %s → %s (%d comentários)", vid, w.ResultSubject, res.Comments.Total())

	if w.Store != nil {
		stats, err := w.Store.Save(ctx, res.Platform, res.VideoID, res.Comments)
		if err != nil {
			w.logf("⚠️  erro gravando %s no banco: %v", vid, err)
		} else if stats.Orphans > 0 {
			w.logf("%s: %d respostas sem pai no banco", vid, stats.Orphans)
			w.Counter.Add(ctx, metrics.KeyOrphanReplies, int64(stats.Orphans))
		}
	}
	if w.Indexer != nil {
		if _, err := w.Indexer.IndexComments(res.Platform, res.VideoID, res.Comments); err != nil {
			w.logf("⚠️  erro indexando %s: %v", vid, err)
		}
	}

	if res.Comments.NeedsAuth {
		// Sem marcar como processado: depois do login o job pode ser refeito.
		w.Counter.Inc(ctx, metrics.KeyAuthRequired)
		return OutcomeAuthRequired, nil
	}

	// Só marca como visto DEPOIS do publish com sucesso
	if w.Dedup != nil {
		if err := w.Dedup.MarkAsSeen(ctx, dedup.PrefixProcessed, vid); err != nil {
			w.logf("⚠️  erro redis MarkAsSeen %s: %v", vid, err)
		}
	}
	w.Counter.Inc(ctx, metrics.KeyJobsOK)
	w.Counter.Add(ctx, metrics.KeyCommentsScraped, int64(res.Comments.Total()))
	return OutcomePublished, nil
}

// RandomDelay espera entre min e max segundos (anti-rate-limit entre jobs). Retorna cedo se ctx acabar.
func RandomDelay(ctx context.Context, minSec, maxSec int) {
	if maxSec < minSec {
		maxSec = minSec
	}
	delay := time.Duration(rand.Intn(maxSec-minSec+1)+minSec) * time.Second
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
