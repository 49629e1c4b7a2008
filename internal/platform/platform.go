// Package platform descreve as plataformas suportadas: formato dos endpoints de lista,
// marcadores de login e como reconhecer identificadores de vídeo.
package platform

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Platform concentra tudo que muda entre TikTok e Douyin. O paginador e o walker são os mesmos.
type Platform struct {
	Name string
	// Origin é aberta antes dos fetches para que cookies e Referer batam com a API.
	Origin   string
	LoginURL string
	// AppID vai no parâmetro "aid" (versão da API web).
	AppID string

	Hosts      []string
	ShortHosts []string

	CommentsPath string
	RepliesPath  string
	// ExtraQuery é acrescentado a todo pedido de lista.
	ExtraQuery url.Values

	// VideoPrefix + id forma a URL canônica do vídeo.
	VideoPrefix string

	RequiresLogin      bool
	LoginWallSelectors []string
	AuthMessage        string
	// SessionCookies são os cookies que só existem depois do login.
	SessionCookies []string
}

// VideoURL devolve a URL canônica do vídeo.
func (p *Platform) VideoURL(videoID string) string {
	return p.VideoPrefix + videoID
}

func (p *Platform) baseQuery(size int, cursor int64) url.Values {
	q := url.Values{}
	for k, vs := range p.ExtraQuery {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("aid", p.AppID)
	q.Set("count", strconv.Itoa(size))
	q.Set("cursor", strconv.FormatInt(cursor, 10))
	return q
}

// CommentsURL monta o pedido da lista de comentários de topo.
func (p *Platform) CommentsURL(videoID string, cursor int64, size int) string {
	q := p.baseQuery(size, cursor)
	q.Set("aweme_id", videoID)
	return p.Origin + p.CommentsPath + "?" + q.Encode()
}

// RepliesURL monta o pedido da lista de respostas de um comentário.
func (p *Platform) RepliesURL(videoID, commentID string, cursor int64, size int) string {
	q := p.baseQuery(size, cursor)
	q.Set("item_id", videoID)
	q.Set("comment_id", commentID)
	return p.Origin + p.RepliesPath + "?" + q.Encode()
}

var registry = map[string]*Platform{}

// Register adiciona uma plataforma ao registro. Nomes repetidos são erro de programação.
func Register(p *Platform) {
	if _, dup := registry[p.Name]; dup {
		panic(fmt.Sprintf("platform: %s registrada duas vezes", p.Name))
	}
	registry[p.Name] = p
}

// Lookup busca uma plataforma pelo nome.
func Lookup(name string) (*Platform, bool) {
	p, ok := registry[name]
	return p, ok
}

// Names lista as plataformas registradas em ordem alfabética.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
