package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/stealth"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/internal/session"
)

// Opener lança um navegador por scraping e aplica a sessão salva da plataforma, se houver.
type Opener struct {
	store session.Store
	opts  Options
}

func NewOpener(store session.Store, opts Options) *Opener {
	opts.setDefaults()
	return &Opener{store: store, opts: opts}
}

// Open devolve uma aba stealth já na origem da plataforma (necessário para o fetch com cookies).
// applied indica que cookies de uma sessão salva foram carregados.
func (o *Opener) Open(ctx context.Context, p *platform.Platform) (scrape.Session, bool, error) {
	cookies, err := o.loadCookies(ctx, p)
	if err != nil {
		return nil, false, err
	}

	profileDir, err := NewProfileDir(o.opts.BaseDir)
	if err != nil {
		return nil, false, err
	}
	browser, err := NewBrowser(o.opts, profileDir)
	if err != nil {
		_ = removeProfile(profileDir)
		return nil, false, err
	}
	pg := &Page{browser: browser, profileDir: profileDir, opts: o.opts, logger: o.opts.Logger}

	applied := false
	if len(cookies) > 0 {
		if err := browser.SetCookies(toCookieParams(cookies)); err != nil {
			o.opts.Logger.Printf("[Rod] ⚠️  não foi possível aplicar a sessão salva de %s: %v", p.Name, err)
		} else {
			applied = true
		}
	}

	page, err := stealth.Page(browser)
	if err != nil {
		pg.Close()
		return nil, false, fmt.Errorf("erro criando pagina stealth: %w", err)
	}
	pg.page = page

	if err := pg.Navigate(ctx, p.Origin); err != nil {
		pg.Close()
		return nil, false, err
	}
	o.opts.Logger.Printf("[Rod] sessão %s aberta (sessão salva aplicada: %v)", p.Name, applied)
	return pg, applied, nil
}

func (o *Opener) loadCookies(ctx context.Context, p *platform.Platform) ([]session.Cookie, error) {
	if o.store == nil {
		return nil, nil
	}
	st, err := o.store.Load(ctx, p.Name)
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	valid := st.Valid(time.Now())
	if len(valid) < len(st.Cookies) {
		o.opts.Logger.Printf("[Rod] sessão %s: %d de %d cookies expirados descartados", p.Name, len(st.Cookies)-len(valid), len(st.Cookies))
	}
	return valid, nil
}
