// Package api expõe o scraping por HTTP: uma rota JSON síncrona e uma rota WebSocket
// que transmite o progresso enquanto a paginação acontece.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/pkg/metrics"
)

type Scraper interface {
	Scrape(ctx context.Context, identifier string, progress scrape.ProgressFunc) (*comment.Comments, error)
}

type Server struct {
	scraper  Scraper
	sem      chan struct{}
	logger   *log.Logger
	counter  *metrics.Counter
	upgrader websocket.Upgrader
}

// NewServer limita a maxConcurrent scrapings simultâneos: cada um abre um navegador.
func NewServer(s Scraper, maxConcurrent int, counter *metrics.Counter, logger *log.Logger) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		scraper: s,
		sem:     make(chan struct{}, maxConcurrent),
		logger:  logger,
		counter: counter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "platforms": platform.Names()})
	})

	group := r.Group("/api/comments")
	group.POST("", s.handleScrape)
	group.GET("/stream", s.handleStream)
	return r
}

// acquire espera uma vaga ou o fim de ctx.
func (s *Server) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() { <-s.sem }

func (s *Server) scrape(ctx context.Context, identifier string, progress scrape.ProgressFunc) (*comment.Comments, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	res, err := s.scraper.Scrape(ctx, identifier, progress)
	if err != nil {
		s.logger.Printf("[API] ❌ scraping %s: %v", identifier, err)
		return nil, err
	}
	if res.NeedsAuth {
		s.counter.Inc(ctx, metrics.KeyAuthRequired)
	} else {
		s.counter.Add(ctx, metrics.KeyCommentsScraped, int64(res.Total()))
	}
	return res, nil
}

// statusFor: identificador inválido é culpa do cliente; o resto é falha de setup do navegador.
func statusFor(err error) int {
	switch {
	case errors.Is(err, platform.ErrUnsupportedIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

type scrapeRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.scrape(c.Request.Context(), req.Identifier, nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
