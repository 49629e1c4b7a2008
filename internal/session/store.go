// Package session guarda os cookies de logins feitos no navegador, por plataforma.
// Durante um scraping a sessão só é lida; quem escreve é o fluxo de login.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("nenhuma sessão salva")

// Cookie é o subconjunto de um cookie do navegador necessário para reaplicá-lo.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"same_site,omitempty"`
}

// Expired considera sessão (Expires <= 0) como válida.
func (c Cookie) Expired(now time.Time) bool {
	return c.Expires > 0 && float64(now.Unix()) >= c.Expires
}

// State é o que fica persistido para uma plataforma.
type State struct {
	Platform string    `json:"platform"`
	SavedAt  time.Time `json:"saved_at"`
	Cookies  []Cookie  `json:"cookies"`
}

// Valid devolve os cookies ainda não expirados.
func (s *State) Valid(now time.Time) []Cookie {
	out := make([]Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// Store persiste sessões. Load devolve ErrNoSession quando não há nada salvo.
type Store interface {
	Load(ctx context.Context, platform string) (*State, error)
	Save(ctx context.Context, platform string, cookies []Cookie) error
	Clear(ctx context.Context, platform string) error
}
