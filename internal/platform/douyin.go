package platform

import "net/url"

// Douyin só mostra comentários para sessões logadas.
var Douyin = &Platform{
	Name:         "douyin",
	Origin:       "https://www.douyin.com",
	LoginURL:     "https://www.douyin.com/",
	AppID:        "6383",
	Hosts:        []string{"douyin.com", "www.douyin.com", "m.douyin.com"},
	ShortHosts:   []string{"v.douyin.com"},
	CommentsPath: "/aweme/v1/web/comment/list/",
	RepliesPath:  "/aweme/v1/web/comment/list/reply/",
	ExtraQuery: url.Values{
		"device_platform": {"webapp"},
		"channel":         {"channel_pc_web"},
	},
	VideoPrefix:   "https://www.douyin.com/video/",
	RequiresLogin: true,
	LoginWallSelectors: []string{
		"#login-pannel",
		`[id^="login-full-panel"]`,
		".login-mask",
		`[data-e2e="login-modal"]`,
	},
	AuthMessage:    "O Douyin exige uma sessão logada para exibir comentários. Rode `argus-comments login -platform douyin`, faça login no navegador e tente novamente.",
	SessionCookies: []string{"sessionid", "sessionid_ss"},
}

func init() {
	Register(Douyin)
}
