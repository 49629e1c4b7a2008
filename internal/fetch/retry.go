// Package fetch executa requisições dentro de um contexto autenticado (aba do navegador)
// com retry e backoff exponencial.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1000 * time.Millisecond
	DefaultMaxDelay   = 4000 * time.Millisecond
)

var (
	// ErrExhausted indica que todas as tentativas falharam. Quem pagina deve parar e manter o que já tem.
	ErrExhausted = errors.New("tentativas de fetch esgotadas")
	// ErrContextNotInitialized indica bug de ordem de chamada: fetch antes de abrir a sessão.
	ErrContextNotInitialized = errors.New("contexto de execução não inicializado")
)

// Fetcher faz a requisição crua dentro do contexto autenticado e devolve o corpo.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Executor envolve um Fetcher com retry e decodificação JSON.
// Não interpreta status_code do payload; isso é responsabilidade de quem pagina.
type Executor struct {
	fetcher    Fetcher
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *log.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Executor)

func WithMaxRetries(n int) Option {
	return func(e *Executor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

func WithBackoff(base, max time.Duration) Option {
	return func(e *Executor) {
		if base > 0 {
			e.baseDelay = base
		}
		if max > 0 {
			e.maxDelay = max
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSleep troca a espera entre tentativas (usado nos testes).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

func NewExecutor(f Fetcher, opts ...Option) *Executor {
	e := &Executor{
		fetcher:    f,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		maxDelay:   DefaultMaxDelay,
		logger:     log.Default(),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backoff calcula min(base * 2^attempt, max).
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Delay é o backoff usado antes da nova tentativa número attempt (0, 1, 2...).
func (e *Executor) Delay(attempt int) time.Duration {
	return Backoff(attempt, e.baseDelay, e.maxDelay)
}

// FetchJSON busca url e decodifica o JSON em out.
// Erros de rede e JSON malformado são repetidos até maxRetries vezes; ao esgotar,
// o erro retornado embrulha ErrExhausted. Contexto não inicializado falha na hora.
func (e *Executor) FetchJSON(ctx context.Context, url string, out any) error {
	if e == nil || e.fetcher == nil {
		return ErrContextNotInitialized
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		body, err := e.fetcher.Fetch(ctx, url)
		if errors.Is(err, ErrContextNotInitialized) {
			return err
		}
		if err == nil {
			if err = json.Unmarshal(body, out); err == nil {
				return nil
			}
			err = fmt.Errorf("json inválido: %w", err)
		}
		lastErr = err

		if attempt == e.maxRetries {
			break
		}
		delay := e.Delay(attempt)
		e.logger.Printf("[Fetch] ⚠️  tentativa %d/%d falhou (%v). Nova tentativa em %v", attempt+1, e.maxRetries+1, err, delay)
		if err := e.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	e.logger.Printf("[Fetch] ❌ desistindo de %s: %v", url, lastErr)
	return fmt.Errorf("%w: %v", ErrExhausted, lastErr)
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
