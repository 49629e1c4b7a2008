package platform

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrUnsupportedIdentifier = errors.New("identificador não suportado")

var (
	numericID = regexp.MustCompile(`^\d+$`)
	videoPath = regexp.MustCompile(`/video/(\d+)`)
	// Douyin também usa ?modal_id=<id> quando o vídeo abre por cima do feed.
	modalID = regexp.MustCompile(`[?&]modal_id=(\d+)`)
)

// Target é o resultado da resolução de um identificador.
// Quando ShortLink != "", o id só é conhecido depois de seguir o link no navegador.
type Target struct {
	Platform  *Platform
	VideoID   string
	ShortLink string
}

// NeedsRedirect indica um link curto ainda não resolvido.
func (t Target) NeedsRedirect() bool {
	return t.VideoID == "" && t.ShortLink != ""
}

// Resolve reconhece um id numérico (atribuído a defaultPlatform), uma URL completa de vídeo ou um link curto.
func Resolve(identifier, defaultPlatform string) (Target, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return Target{}, fmt.Errorf("%w: vazio", ErrUnsupportedIdentifier)
	}

	if numericID.MatchString(id) {
		p, ok := Lookup(defaultPlatform)
		if !ok {
			return Target{}, fmt.Errorf("%w: plataforma padrão %q desconhecida", ErrUnsupportedIdentifier, defaultPlatform)
		}
		return Target{Platform: p, VideoID: id}, nil
	}

	raw := id
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedIdentifier, identifier)
	}
	host := strings.ToLower(u.Hostname())

	for _, name := range Names() {
		p := registry[name]
		if hostIn(host, p.ShortHosts) {
			return Target{Platform: p, ShortLink: u.String()}, nil
		}
		if hostIn(host, p.Hosts) {
			vid := ExtractVideoID(u.String())
			if vid == "" {
				return Target{}, fmt.Errorf("%w: URL sem id de vídeo: %q", ErrUnsupportedIdentifier, identifier)
			}
			return Target{Platform: p, VideoID: vid}, nil
		}
	}
	return Target{}, fmt.Errorf("%w: host %q", ErrUnsupportedIdentifier, host)
}

// ExtractVideoID tira o id numérico de uma URL de vídeo, ou "" se não houver.
func ExtractVideoID(rawURL string) string {
	if m := videoPath.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := modalID.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h {
			return true
		}
	}
	return false
}
