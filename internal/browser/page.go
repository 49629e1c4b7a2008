package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/loviiin/argus-comments/internal/fetch"
	"github.com/loviiin/argus-comments/pkg/captcha"
)

const captchaPoll = 3 * time.Second

// fetchJS roda dentro da página: mesma origem, cookies da sessão e headers do navegador.
const fetchJS = `async (u) => {
	const r = await fetch(u, { credentials: "include", headers: { "accept": "application/json" } });
	return { status: r.status, body: await r.text() };
}`

// Page é uma aba aberta com a sessão da plataforma. Implementa scrape.Session.
// É de um único scraping: não é seguro compartilhar entre goroutines.
type Page struct {
	browser    *rod.Browser
	page       *rod.Page
	profileDir string
	opts       Options
	logger     *log.Logger

	closeOnce sync.Once
	closeErr  error
}

// StatusError é uma resposta HTTP fora de 2xx vinda do fetch da página.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d em %s", e.Status, e.URL)
}

// Fetch devolve o corpo de url buscado pela própria página.
// Respostas não-2xx viram erro (o executor decide se repete).
func (p *Page) Fetch(ctx context.Context, url string) ([]byte, error) {
	if p == nil || p.page == nil {
		return nil, fetch.ErrContextNotInitialized
	}
	res, err := p.page.Context(ctx).Eval(fetchJS, url)
	if err != nil {
		return nil, fmt.Errorf("fetch na página: %w", err)
	}
	status := res.Value.Get("status").Int()
	if status < 200 || status > 299 {
		return nil, &StatusError{URL: url, Status: status}
	}
	return []byte(res.Value.Get("body").Str()), nil
}

// Navigate abre url, espera o load e, se aparecer captcha, espera a resolução manual.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if p == nil || p.page == nil {
		return fetch.ErrContextNotInitialized
	}
	pg := p.page.Context(ctx)
	if err := pg.Timeout(p.opts.NavigateTimeout).Navigate(url); err != nil {
		return fmt.Errorf("erro navegando para %s: %w", url, err)
	}
	if err := pg.Timeout(p.opts.NavigateTimeout).WaitLoad(); err != nil {
		p.logger.Printf("[Rod] ⚠️  WaitLoad em %s: %v", url, err)
	}

	if captcha.IsCaptchaPresent(pg) {
		p.logger.Printf("[Rod] 🧩 Captcha detectado em %s. Resolva manualmente (monitor %s), aguardando até %v...", url, p.opts.DebugPort, p.opts.CaptchaWait)
		err := captcha.WaitResolution(ctx, func() bool { return captcha.IsCaptchaPresent(pg) }, p.opts.CaptchaWait, captchaPoll)
		if err != nil {
			return fmt.Errorf("falha aguardando resolução manual: %w", err)
		}
		p.logger.Println("[Rod] ✅ Captcha resolvido!")
		_ = pg.Timeout(p.opts.NavigateTimeout).WaitLoad()
	}
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if p == nil || p.page == nil {
		return "", fetch.ErrContextNotInitialized
	}
	return p.page.Context(ctx).Timeout(p.opts.NavigateTimeout).HTML()
}

// URL é a URL atual da aba (depois de redirecionamentos).
func (p *Page) URL() string {
	if p == nil || p.page == nil {
		return ""
	}
	info, err := p.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Close fecha aba e navegador e apaga o perfil descartável. Pode ser chamado mais de uma vez.
func (p *Page) Close() error {
	if p == nil {
		return nil
	}
	p.closeOnce.Do(func() {
		if p.page != nil {
			_ = p.page.Close()
		}
		if p.browser != nil {
			p.closeErr = p.browser.Close()
		}
		if p.profileDir != "" {
			if err := os.RemoveAll(p.profileDir); err != nil && p.closeErr == nil {
				p.closeErr = err
			}
		}
	})
	return p.closeErr
}
