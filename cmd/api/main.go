package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loviiin/argus-comments/internal/api"
	"github.com/loviiin/argus-comments/internal/app"
	"github.com/loviiin/argus-comments/internal/browser"
	"github.com/loviiin/argus-comments/pkg/config"
	"github.com/loviiin/argus-comments/pkg/metrics"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb := app.NewRedis(cfg)
	defer rdb.Close()
	counter := metrics.NewCounter(rdb)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  redis indisponível (%v): métricas desligadas", err)
		counter = nil
	} else {
		go metrics.StartMetricsServer(cfg.Metrics.Port, rdb, metrics.CommentDefs)
	}

	store, err := app.NewSessionStore(cfg, rdb)
	if err != nil {
		log.Fatalf("Erro sessões: %v", err)
	}
	scraper := app.NewScraper(cfg, store, log.Default())

	go browser.StartProfileSweeper(ctx, "", 15*time.Minute, log.Default())

	router := api.NewServer(scraper, cfg.API.MaxConcurrent, counter, log.Default()).Router()

	httpSrv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("API ouvindo em %s", cfg.API.Port)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Erro servidor HTTP: %v", err)
	}
}
