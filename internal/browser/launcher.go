// Package browser é o contexto de execução do scraping: um Chrome controlado pelo Rod,
// com perfil descartável, cookies da sessão salva e páginas stealth.
package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"
)

// ProfilePrefix marca os diretórios de perfil criados por NewBrowser (varridos pelo sweeper).
const ProfilePrefix = "argus_profile_"

// Options controla como o navegador é lançado.
type Options struct {
	Bin      string
	Headless bool
	// DebugPort expõe o monitor do Rod para resolver captcha via VNC. Vazio desliga.
	DebugPort       string
	NavigateTimeout time.Duration
	CaptchaWait     time.Duration
	// BaseDir é onde os perfis descartáveis são criados (padrão: os.TempDir()).
	BaseDir string
	Logger  *log.Logger
}

func (o *Options) setDefaults() {
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = 20 * time.Second
	}
	if o.CaptchaWait <= 0 {
		o.CaptchaWait = 5 * time.Minute
	}
	if o.BaseDir == "" {
		o.BaseDir = os.TempDir()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// NewProfileDir cria um diretório de perfil exclusivo para um navegador.
func NewProfileDir(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, ProfilePrefix+uuid.New().String()[:8])
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("criando perfil %s: %w", dir, err)
	}
	return dir, nil
}

// NewBrowser lança um navegador com o perfil em profileDir.
// Cada scraping tem seu próprio perfil: nada vaza entre execuções além da sessão salva.
func NewBrowser(opts Options, profileDir string) (*rod.Browser, error) {
	path := opts.Bin
	if path == "" {
		path, _ = launcher.LookPath()
	}

	l := launcher.New().
		Bin(path).
		UserDataDir(profileDir).
		Leakless(false).
		Set("autoplay-policy", "no-user-gesture-required").
		Set("use-gl", "swiftshader"). // Software rendering para containers
		Set("disable-gpu").
		Set("no-sandbox") // Necessário em containers Linux

	if opts.Headless {
		l = l.Set("headless", "new") // Para produção (Evasão Anti-Bot)
	} else {
		l = l.Headless(false).Devtools(true) // Para desenvolvimento/VNC (Permite ver a tela)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("erro conectando no browser: %w", err)
	}

	if opts.DebugPort != "" {
		// Monitor para debug remoto
		go browser.ServeMonitor(opts.DebugPort)
	}
	return browser, nil
}
