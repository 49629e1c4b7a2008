package comment

import (
	"encoding/json"
	"time"
)

// TimeLayout é o formato de create_time: ISO-8601 em UTC, truncado em segundos e sem sufixo de fuso.
const TimeLayout = "2006-01-02T15:04:05"

// Comment representa um comentário (ou resposta) já normalizado.
// Depois de construído não é mais alterado; pode ser compartilhado entre chamadores.
type Comment struct {
	CommentID       string    `json:"comment_id"`
	Username        string    `json:"username"`
	Nickname        string    `json:"nickname"`
	Comment         string    `json:"comment"`
	CreateTime      string    `json:"create_time"`
	Avatar          string    `json:"avatar"`
	TotalReply      int       `json:"total_reply"`
	Replies         []Comment `json:"replies"`
	ParentCommentID string    `json:"parent_comment_id,omitempty"`
	IsOrphanReply   bool      `json:"is_orphan_reply,omitempty"`
}

// MarshalJSON garante "replies": [] em vez de null.
func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	if c.Replies == nil {
		c.Replies = []Comment{}
	}
	return json.Marshal(plain(c))
}

// IsReply retorna true quando o comentário pertence a outro comentário.
func (c Comment) IsReply() bool {
	return c.ParentCommentID != ""
}

// Comments é o resultado agregado do scraping de um vídeo.
type Comments struct {
	Caption     string    `json:"caption"`
	VideoURL    string    `json:"video_url"`
	Comments    []Comment `json:"comments"`
	HasMore     int       `json:"has_more"`
	NeedsAuth   bool      `json:"needs_auth,omitempty"`
	AuthMessage string    `json:"auth_message,omitempty"`
}

// NewComments monta o resultado de uma paginação completa (has_more = 0).
func NewComments(caption, videoURL string, list []Comment) *Comments {
	if list == nil {
		list = []Comment{}
	}
	return &Comments{
		Caption:  caption,
		VideoURL: videoURL,
		Comments: list,
		HasMore:  0,
	}
}

// AuthRequired monta o resultado vazio devolvido quando a plataforma exige login.
func AuthRequired(message string) *Comments {
	return &Comments{
		Comments:    []Comment{},
		NeedsAuth:   true,
		AuthMessage: message,
	}
}

// MarshalJSON garante "comments": [] em vez de null.
func (c Comments) MarshalJSON() ([]byte, error) {
	type plain Comments
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return json.Marshal(plain(c))
}

// Total conta comentários de topo e respostas.
func (c *Comments) Total() int {
	n := 0
	for _, top := range c.Comments {
		n += 1 + len(top.Replies)
	}
	return n
}

// FormatCreateTime converte epoch em segundos para TimeLayout (UTC).
// Valores não positivos viram string vazia.
func FormatCreateTime(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format(TimeLayout)
}
