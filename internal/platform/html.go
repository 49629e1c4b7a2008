package platform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DetectLoginWall diz se o HTML da página contém algum dos marcadores de login.
// HTML inválido conta como "sem muro"; quem decide o fallback é o scraper.
func DetectLoginWall(html string, selectors []string) bool {
	if html == "" || len(selectors) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// MetaCaption lê og:title (ou og:description) da página do vídeo.
func MetaCaption(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, prop := range []string{"og:title", "og:description"} {
		content, ok := doc.Find(`meta[property="` + prop + `"]`).First().Attr("content")
		if ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return ""
}
