package platform

import (
	"strings"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/paginate"
)

// ListResponse é o envelope das APIs de lista (comentários e respostas) do TikTok e do Douyin.
type ListResponse struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	Comments   []Item `json:"comments"`
	Cursor     int64  `json:"cursor"`
	HasMore    int    `json:"has_more"`
	Total      int    `json:"total"`
}

// Item é um comentário cru como vem da API.
type Item struct {
	CID        string `json:"cid"`
	Text       string `json:"text"`
	CreateTime int64  `json:"create_time"`
	// ReplyCommentTotal é a contagem de respostas informada pela plataforma.
	ReplyCommentTotal int `json:"reply_comment_total"`
	// ReplyID != "0" marca um registro que é resposta de outro comentário.
	ReplyID        string    `json:"reply_id"`
	ReplyToReplyID string    `json:"reply_to_reply_id"`
	User           User      `json:"user"`
	ShareInfo      ShareInfo `json:"share_info"`
}

type User struct {
	UniqueID    string `json:"unique_id"`
	ShortID     string `json:"short_id"`
	Nickname    string `json:"nickname"`
	AvatarThumb struct {
		URLList []string `json:"url_list"`
	} `json:"avatar_thumb"`
}

type ShareInfo struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	URL   string `json:"url"`
}

// Caption prefere o título; o TikTok costuma deixar o título vazio e pôr a legenda em desc.
func (s ShareInfo) Caption() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return strings.TrimSpace(s.Desc)
}

// Page converte o envelope para o formato do paginador.
func (r *ListResponse) Page() *paginate.Page[Item] {
	return &paginate.Page[Item]{
		Items:      r.Comments,
		Cursor:     r.Cursor,
		HasMore:    r.HasMore != 0,
		StatusCode: r.StatusCode,
		StatusMsg:  r.StatusMsg,
	}
}

// ReplyTarget devolve o id do comentário que este registro responde, ou "" se for de topo.
func (it Item) ReplyTarget() string {
	if it.ReplyID == "" || it.ReplyID == "0" {
		return ""
	}
	return it.ReplyID
}

// Username usa o @ público; contas do Douyin às vezes só têm short_id.
func (it Item) Username() string {
	if it.User.UniqueID != "" {
		return it.User.UniqueID
	}
	return it.User.ShortID
}

// Avatar devolve a primeira URL da miniatura, ou "".
func (it Item) Avatar() string {
	if len(it.User.AvatarThumb.URLList) == 0 {
		return ""
	}
	return it.User.AvatarThumb.URLList[0]
}

// Comment constrói o valor final. parentID vazio significa comentário de topo.
func (it Item) Comment(parentID string, replies []comment.Comment) comment.Comment {
	if replies == nil {
		replies = []comment.Comment{}
	}
	return comment.Comment{
		CommentID:       it.CID,
		Username:        it.Username(),
		Nickname:        it.User.Nickname,
		Comment:         it.Text,
		CreateTime:      comment.FormatCreateTime(it.CreateTime),
		Avatar:          it.Avatar(),
		TotalReply:      it.ReplyCommentTotal,
		Replies:         replies,
		ParentCommentID: parentID,
	}
}
