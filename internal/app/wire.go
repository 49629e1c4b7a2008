// Package app monta as peças comuns aos binários a partir do config.yaml.
package app

import (
	"fmt"
	"log"

	"github.com/loviiin/argus-comments/internal/browser"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/internal/session"
	"github.com/loviiin/argus-comments/pkg/config"
	"github.com/redis/go-redis/v9"
)

func NewRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// NewSessionStore escolhe o backend de sessões. rdb só é usado com backend "redis".
func NewSessionStore(cfg *config.Config, rdb *redis.Client) (session.Store, error) {
	switch cfg.Session.Backend {
	case "file":
		return session.NewFileStore(cfg.Session.Dir), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("session.backend=redis exige conexão com o redis")
		}
		return session.NewRedisStore(rdb, cfg.SessionTTL()), nil
	default:
		return nil, fmt.Errorf("session.backend desconhecido: %q", cfg.Session.Backend)
	}
}

func BrowserOptions(cfg *config.Config, logger *log.Logger) browser.Options {
	return browser.Options{
		Bin:             cfg.Browser.Bin,
		Headless:        cfg.Browser.Headless,
		DebugPort:       cfg.Browser.DebugPort,
		NavigateTimeout: cfg.NavigateTimeout(),
		CaptchaWait:     cfg.CaptchaWait(),
		Logger:          logger,
	}
}

func ScrapeOptions(cfg *config.Config) scrape.Options {
	return scrape.Options{
		DefaultPlatform: cfg.App.DefaultPlatform,
		PageSize:        cfg.Scraper.PageSize,
		PageDelay:       cfg.PageDelay(),
		MaxRetries:      cfg.Scraper.MaxRetries,
		BaseDelay:       cfg.BaseDelay(),
		MaxDelay:        cfg.MaxDelay(),
	}
}

// NewScraper liga o motor de paginação a um Opener de navegador com o store de sessões.
func NewScraper(cfg *config.Config, store session.Store, logger *log.Logger) *scrape.Scraper {
	opener := browser.NewOpener(store, BrowserOptions(cfg, logger))
	return scrape.New(opener, ScrapeOptions(cfg), logger)
}
