package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const wallPage = `<html><head><title>Douyin</title></head>
<body><div id="login-full-panel-abc"><span>扫码登录</span></div></body></html>`

const videoPage = `<html><head>
<meta property="og:title" content="Receita de pão em 5 minutos">
<meta property="og:description" content="descrição">
</head><body><div id="comments"></div></body></html>`

func TestDetectLoginWall(t *testing.T) {
	assert.True(t, DetectLoginWall(wallPage, Douyin.LoginWallSelectors))
	assert.False(t, DetectLoginWall(videoPage, Douyin.LoginWallSelectors))
	assert.False(t, DetectLoginWall("", Douyin.LoginWallSelectors))
	assert.False(t, DetectLoginWall(wallPage, nil))
	assert.True(t, DetectLoginWall(`<div data-e2e="login-modal"></div>`, TikTok.LoginWallSelectors))
}

func TestMetaCaption(t *testing.T) {
	assert.Equal(t, "Receita de pão em 5 minutos", MetaCaption(videoPage))
	assert.Equal(t, "descrição", MetaCaption(`<meta property="og:title" content=" "><meta property="og:description" content="descrição">`))
	assert.Equal(t, "Douyin", MetaCaption(wallPage))
	assert.Equal(t, "", MetaCaption(""))
}
