package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loviiin/argus-comments/internal/app"
	"github.com/loviiin/argus-comments/internal/browser"
	"github.com/loviiin/argus-comments/internal/repository"
	"github.com/loviiin/argus-comments/internal/search"
	"github.com/loviiin/argus-comments/internal/worker"
	"github.com/loviiin/argus-comments/pkg/config"
	"github.com/loviiin/argus-comments/pkg/dedup"
	"github.com/loviiin/argus-comments/pkg/metrics"
	"github.com/nats-io/nats.go"
)

func main() {
	cfg := config.LoadConfig()
	if id := os.Getenv("WORKER_ID"); id != "" {
		cfg.Worker.ID = id
	}

	log.Printf("Argus Comments Worker %s iniciando...", cfg.Worker.ID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- NATS ---
	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		log.Fatal("Erro NATS:", err)
	}
	defer nc.Close()
	js, err := nc.JetStream()
	if err != nil {
		log.Fatal("Erro JetStream:", err)
	}
	worker.EnsureStreams(js, cfg.Worker.JobSubject, cfg.Worker.ResultSubject)

	// --- Redis ---
	rdb := app.NewRedis(cfg)
	dd := dedup.NewDeduplicator(rdb, cfg.Worker.DedupTTLHours)
	defer dd.Close()
	go metrics.StartMetricsServer(cfg.Metrics.Port, rdb, metrics.CommentDefs)

	store, err := app.NewSessionStore(cfg, rdb)
	if err != nil {
		log.Fatalf("Erro sessões: %v", err)
	}

	w := &worker.Worker{
		ID:              cfg.Worker.ID,
		ResultSubject:   cfg.Worker.ResultSubject,
		DefaultPlatform: cfg.App.DefaultPlatform,
		Scraper:         app.NewScraper(cfg, store, log.Default()),
		Publisher:       worker.JetStreamPublisher{JS: js},
		Dedup:           dd,
		Counter:         metrics.NewCounter(rdb),
		LockTTL:         time.Duration(cfg.Worker.AckWaitMinutes) * time.Minute,
	}

	// --- Postgres / Meilisearch (opcionais) ---
	if !cfg.Worker.SkipPersist && cfg.Database.URL != "" {
		repo, err := repository.NewCommentRepository(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Erro Postgres: %v", err)
		}
		defer repo.Close(context.Background())
		w.Store = repo
	}
	if !cfg.Worker.SkipIndex && cfg.Meilisearch.Host != "" {
		w.Indexer = search.NewIndexer(cfg.Meilisearch.Host, cfg.Meilisearch.Key, cfg.Meilisearch.Index)
	}

	go browser.StartProfileSweeper(ctx, "", 15*time.Minute, log.Default())

	// Todos os workers usam o mesmo durable para dividir a carga.
	// AckWait longo evita redelivery no meio de vídeos com muitos comentários.
	sub, err := js.PullSubscribe(cfg.Worker.JobSubject, cfg.Worker.Durable,
		nats.AckWait(time.Duration(cfg.Worker.AckWaitMinutes)*time.Minute))
	if err != nil {
		log.Fatal("Erro ao criar pull subscriber:", err)
	}
	defer sub.Unsubscribe()

	log.Printf("Worker %s rodando! Consumindo %s sequencialmente...", cfg.Worker.ID, cfg.Worker.JobSubject)
	w.Run(ctx, sub, cfg.Worker.MinDelaySec, cfg.Worker.MaxDelaySec)
	log.Println("Sinal recebido. Encerrando worker...")
}
