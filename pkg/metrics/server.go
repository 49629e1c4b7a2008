package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// MetricDef define o mapeamento entre uma chave Redis e uma métrica Prometheus.
type MetricDef struct {
	RedisKey string
	PromName string
	Help     string
	Type     string // "counter" ou "gauge"
}

// Chaves incrementadas pelo worker e pela API.
const (
	KeyJobsOK          = "argus:metrics:comments_jobs_ok"
	KeyJobsFailed      = "argus:metrics:comments_jobs_failed"
	KeyJobsSkipped     = "argus:metrics:comments_jobs_skipped"
	KeyCommentsScraped = "argus:metrics:comments_extracted"
	KeyAuthRequired    = "argus:metrics:comments_auth_required"
	KeyOrphanReplies   = "argus:metrics:comments_orphan_replies"
)

// CommentDefs são as métricas expostas pelos serviços de comentários.
var CommentDefs = []MetricDef{
	{KeyJobsOK, "argus_comments_jobs_ok_total", "Scrapes concluídos e publicados", "counter"},
	{KeyJobsFailed, "argus_comments_jobs_failed_total", "Scrapes que falharam (Nak)", "counter"},
	{KeyJobsSkipped, "argus_comments_jobs_skipped_total", "Jobs ignorados por já terem sido processados", "counter"},
	{KeyCommentsScraped, "argus_comments_extracted_total", "Comentários e respostas extraídos", "counter"},
	{KeyAuthRequired, "argus_comments_auth_required_total", "Scrapes que pararam no muro de login", "counter"},
	{KeyOrphanReplies, "argus_comments_orphan_replies_total", "Respostas gravadas sem o comentário pai", "counter"},
}

// Counter incrementa as chaves Redis lidas pelo /metrics.
type Counter struct {
	rdb *redis.Client
}

func NewCounter(rdb *redis.Client) *Counter {
	return &Counter{rdb: rdb}
}

// Add soma n na chave. Erros só são logados: métrica não derruba o fluxo.
func (c *Counter) Add(ctx context.Context, key string, n int64) {
	if c == nil || c.rdb == nil || n == 0 {
		return
	}
	if err := c.rdb.IncrBy(ctx, key, n).Err(); err != nil {
		log.Printf("metrics: erro ao incrementar %s: %v", key, err)
	}
}

func (c *Counter) Inc(ctx context.Context, key string) {
	c.Add(ctx, key, 1)
}

// Handler escreve as métricas no formato de exposição do Prometheus.
func Handler(rdb *redis.Client, metricsDefs []MetricDef) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		ctx := r.Context()
		for _, m := range metricsDefs {
			val, err := rdb.Get(ctx, m.RedisKey).Result()
			if errors.Is(err, redis.Nil) {
				val = "0"
			} else if err != nil {
				log.Printf("metrics: erro ao ler chave %s: %v", m.RedisKey, err)
				val = "0"
			}
			fmt.Fprintf(w, "# HELP %s %s\n", m.PromName, m.Help)
			fmt.Fprintf(w, "# TYPE %s %s\n", m.PromName, m.Type)
			fmt.Fprintf(w, "%s %s\n\n", m.PromName, val)
		}
	})
}

// StartMetricsServer inicia um servidor HTTP que expõe métricas no formato Prometheus.
func StartMetricsServer(port string, rdb *redis.Client, metricsDefs []MetricDef) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(rdb, metricsDefs))

	log.Printf("Metrics server ouvindo em %s/metrics", port)
	if err := http.ListenAndServe(port, mux); err != nil {
		log.Printf("metrics: servidor encerrado: %v", err)
	}
}
