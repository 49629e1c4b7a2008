package comment

// Record é uma linha achatada da árvore, no formato consumido pela ingestão (board/banco).
type Record struct {
	VideoID         string
	CommentID       string
	ParentCommentID string
	Username        string
	Nickname        string
	Text            string
	CreateTime      string
	Avatar          string
	TotalReply      int
	IsOrphanReply   bool
	Position        int
}

// Flatten percorre a árvore em ordem (pai e depois suas respostas) e calcula o status de órfão:
// uma resposta é órfã quando o pai declarado não aparece entre os comentários de topo do resultado.
func Flatten(videoID string, list []Comment) []Record {
	tops := make(map[string]struct{}, len(list))
	for _, c := range list {
		if !c.IsReply() {
			tops[c.CommentID] = struct{}{}
		}
	}

	orphan := func(c Comment) bool {
		if !c.IsReply() {
			return false
		}
		_, ok := tops[c.ParentCommentID]
		return !ok
	}

	records := make([]Record, 0, len(list))
	add := func(c Comment) {
		records = append(records, Record{
			VideoID:         videoID,
			CommentID:       c.CommentID,
			ParentCommentID: c.ParentCommentID,
			Username:        c.Username,
			Nickname:        c.Nickname,
			Text:            c.Comment,
			CreateTime:      c.CreateTime,
			Avatar:          c.Avatar,
			TotalReply:      c.TotalReply,
			IsOrphanReply:   orphan(c),
			Position:        len(records),
		})
	}

	for _, c := range list {
		add(c)
		for _, r := range c.Replies {
			add(r)
		}
	}
	return records
}

// Orphans devolve os ids das respostas cujo pai não foi encontrado.
func Orphans(records []Record) []string {
	var ids []string
	for _, r := range records {
		if r.IsOrphanReply {
			ids = append(ids, r.CommentID)
		}
	}
	return ids
}
