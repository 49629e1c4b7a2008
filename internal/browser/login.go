package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/stealth"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/loviiin/argus-comments/internal/session"
)

var ErrLoginTimeout = errors.New("timeout aguardando login")

const loginPoll = 2 * time.Second

// Login abre o navegador visível na página de login e espera o usuário entrar.
// Quando os cookies de sessão aparecem, eles são gravados no store. É o único ponto que escreve sessões.
func Login(ctx context.Context, p *platform.Platform, store session.Store, opts Options, timeout time.Duration) error {
	opts.Headless = false
	opts.setDefaults()

	profileDir, err := NewProfileDir(opts.BaseDir)
	if err != nil {
		return err
	}
	browser, err := NewBrowser(opts, profileDir)
	if err != nil {
		_ = removeProfile(profileDir)
		return err
	}
	pg := &Page{browser: browser, profileDir: profileDir, opts: opts, logger: opts.Logger}
	defer pg.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("erro criando pagina stealth: %w", err)
	}
	pg.page = page

	if err := pg.Navigate(ctx, p.LoginURL); err != nil {
		return err
	}
	opts.Logger.Printf("[Login] Faça login em %s no navegador aberto. Aguardando até %v...", p.Name, timeout)

	hosts := append(append([]string{}, p.Hosts...), p.ShortHosts...)
	deadline := time.Now().Add(timeout)
	for {
		raw, err := browser.GetCookies()
		if err != nil {
			return fmt.Errorf("lendo cookies: %w", err)
		}
		cookies := fromNetworkCookies(raw, hosts)
		if hasSessionCookie(cookies, p.SessionCookies) {
			if err := store.Save(ctx, p.Name, cookies); err != nil {
				return err
			}
			opts.Logger.Printf("[Login] ✅ sessão %s salva (%d cookies)", p.Name, len(cookies))
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLoginTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginPoll):
		}
	}
}

func removeProfile(dir string) error {
	return os.RemoveAll(dir)
}
