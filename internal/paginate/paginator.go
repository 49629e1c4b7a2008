// Package paginate percorre endpoints de lista baseados em cursor até o fim.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/loviiin/argus-comments/internal/fetch"
)

// DefaultPageSize é o tamanho de página pedido aos endpoints de comentários e respostas.
const DefaultPageSize = 50

// Page é o envelope normalizado de uma página: {items[], has_more, cursor, status_code}.
type Page[T any] struct {
	Items      []T
	Cursor     int64
	HasMore    bool
	StatusCode int
	StatusMsg  string
}

// FetchFunc busca a página que começa em cursor.
type FetchFunc[T any] func(ctx context.Context, cursor int64, size int) (*Page[T], error)

// StopReason diz por que a paginação terminou.
type StopReason int

const (
	StopNoMore StopReason = iota
	StopEmpty
	StopStatus
	StopExhausted
	StopStalled
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopNoMore:
		return "has_more=0"
	case StopEmpty:
		return "página vazia"
	case StopStatus:
		return "status_code != 0"
	case StopExhausted:
		return "fetch esgotado"
	case StopStalled:
		return "cursor não avançou"
	case StopCanceled:
		return "cancelado"
	default:
		return "desconhecido"
	}
}

// Summary resume uma paginação concluída.
type Summary struct {
	Pages  int
	Items  int
	Cursor int64
	Reason StopReason
}

// Paginator é o paginador único, parametrizado por nome (para logs), tamanho e atraso entre páginas.
type Paginator[T any] struct {
	Name   string
	Size   int
	Delay  time.Duration
	Logger *log.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New cria um paginador com tamanho padrão e sem atraso.
func New[T any](name string) *Paginator[T] {
	return &Paginator[T]{Name: name, Size: DefaultPageSize}
}

// WithSleep troca a espera entre páginas (usado nos testes).
func (p *Paginator[T]) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Paginator[T] {
	p.sleep = fn
	return p
}

// Walk busca páginas a partir do cursor 0 e entrega os itens de cada uma a visit, na ordem.
//
// Para quando: o fetch esgota as tentativas, status_code != 0, a lista vem vazia,
// has_more é falso, ou o cursor devolvido não avança além do cursor usado no pedido.
// O cursor do servidor é usado literalmente no próximo pedido.
// Só erros de contrato (ex.: contexto não inicializado) e erros de visit são devolvidos.
func (p *Paginator[T]) Walk(ctx context.Context, fetchPage FetchFunc[T], visit func(items []T) error) (Summary, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var sum Summary
	var cursor int64
	for {
		page, err := fetchPage(ctx, cursor, size)
		if err != nil {
			if errors.Is(err, fetch.ErrExhausted) {
				logger.Printf("[Paginate] %s: parando no cursor %d (%v)", p.Name, cursor, err)
				sum.Reason = StopExhausted
				return sum, nil
			}
			return sum, fmt.Errorf("%s: cursor %d: %w", p.Name, cursor, err)
		}
		if page == nil {
			sum.Reason = StopExhausted
			return sum, nil
		}
		sum.Pages++

		if page.StatusCode != 0 {
			logger.Printf("[Paginate] %s: API respondeu status_code=%d (%s), mantendo resultados parciais", p.Name, page.StatusCode, page.StatusMsg)
			sum.Reason = StopStatus
			return sum, nil
		}
		if len(page.Items) == 0 {
			sum.Reason = StopEmpty
			return sum, nil
		}

		sum.Items += len(page.Items)
		if err := visit(page.Items); err != nil {
			return sum, err
		}

		if !page.HasMore {
			sum.Reason = StopNoMore
			return sum, nil
		}
		if page.Cursor <= cursor {
			logger.Printf("[Paginate] ⚠️  %s: cursor não avançou (usado %d, recebido %d). Interrompendo para evitar loop", p.Name, cursor, page.Cursor)
			sum.Reason = StopStalled
			return sum, nil
		}
		cursor = page.Cursor
		sum.Cursor = cursor

		if p.Delay > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				sum.Reason = StopCanceled
				return sum, nil
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
