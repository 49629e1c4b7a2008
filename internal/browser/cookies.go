package browser

import (
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/loviiin/argus-comments/internal/session"
)

func toCookieParams(cookies []session.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: proto.NetworkCookieSameSite(c.SameSite),
			Expires:  proto.TimeSinceEpoch(c.Expires),
		})
	}
	return params
}

// fromNetworkCookies converte os cookies do navegador, mantendo só os dos domínios da plataforma.
func fromNetworkCookies(cookies []*proto.NetworkCookie, hosts []string) []session.Cookie {
	out := make([]session.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if !matchesHost(c.Domain, hosts) {
			continue
		}
		expires := float64(c.Expires)
		if c.Session {
			expires = 0
		}
		out = append(out, session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// matchesHost aceita ".tiktok.com" para "www.tiktok.com" e vice-versa.
func matchesHost(domain string, hosts []string) bool {
	d := strings.TrimLeft(domain, ".")
	for _, h := range hosts {
		h = strings.TrimLeft(h, ".")
		if d == h || strings.HasSuffix(h, "."+d) || strings.HasSuffix(d, "."+h) {
			return true
		}
	}
	return false
}

// hasSessionCookie diz se algum dos cookies de login já existe com valor.
func hasSessionCookie(cookies []session.Cookie, names []string) bool {
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		for _, n := range names {
			if c.Name == n {
				return true
			}
		}
	}
	return false
}
