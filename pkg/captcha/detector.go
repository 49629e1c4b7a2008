package captcha

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

var ErrCaptchaTimeout = errors.New("timeout aguardando resolução do captcha")

var selectors = []string{
	".captcha_verify_container",
	".captcha_verify_img_slide",
	"[class*='captcha']",
	"[class*='secsdk-captcha']",
	"[id*='captcha']",
	"div[class*='verify']",
}

// IsVerifyURL reconhece as páginas de verificação para onde TikTok e Douyin redirecionam.
func IsVerifyURL(u string) bool {
	u = strings.ToLower(u)
	return strings.Contains(u, "verify") || strings.Contains(u, "captcha")
}

// IsCaptchaPresent verifica se um captcha está presente na página.
func IsCaptchaPresent(page *rod.Page) bool {
	info, _ := page.Info()
	if info != nil && IsVerifyURL(info.URL) {
		return true
	}

	// Tenta checar rápido se existe IFrame do Captcha (comum no TikTok)
	if _, err := page.Timeout(2 * time.Second).Element(`iframe[src*="captcha"]`); err == nil {
		return true
	}

	for _, sel := range selectors {
		if _, err := page.Timeout(1 * time.Second).Element(sel); err == nil {
			return true
		}
	}

	// Regex textual rápido em vez de Eval custoso
	if _, err := page.Timeout(1 * time.Second).ElementR("*", "(?i)(drag.*slider|fit.*puzzle|verify|captcha)"); err == nil {
		return true
	}

	return false
}

// WaitResolution aguarda o captcha sumir (resolvido manualmente via monitor/VNC).
// present é consultado a cada poll; nunca tentamos resolver o captcha sozinhos.
func WaitResolution(ctx context.Context, present func() bool, timeout, poll time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if !present() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrCaptchaTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}
