package platform

import "net/url"

// TikTok aceita acesso como visitante; a API web devolve comentários sem login.
var TikTok = &Platform{
	Name:         "tiktok",
	Origin:       "https://www.tiktok.com",
	LoginURL:     "https://www.tiktok.com/login",
	AppID:        "1988",
	Hosts:        []string{"tiktok.com", "www.tiktok.com", "m.tiktok.com"},
	ShortHosts:   []string{"vm.tiktok.com", "vt.tiktok.com"},
	CommentsPath: "/api/comment/list/",
	RepliesPath:  "/api/comment/list/reply/",
	ExtraQuery: url.Values{
		"app_language":    {"en"},
		"device_platform": {"web_pc"},
	},
	VideoPrefix:        "https://www.tiktok.com/@/video/",
	LoginWallSelectors: []string{`[data-e2e="login-modal"]`},
	AuthMessage:        "O TikTok exigiu login para exibir os comentários. Rode `argus-comments login -platform tiktok` e tente novamente.",
	SessionCookies:     []string{"sessionid", "sessionid_ss"},
}

func init() {
	Register(TikTok)
}
