package scrape

import (
	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/platform"
)

// node é um comentário de topo ainda em montagem. Só vira comment.Comment no fim do walk.
type node struct {
	item     platform.Item
	replies  []comment.Comment
	replyIDs map[string]struct{}
}

func (n *node) appendReply(c comment.Comment) bool {
	if _, dup := n.replyIDs[c.CommentID]; dup {
		return false
	}
	n.replyIDs[c.CommentID] = struct{}{}
	n.replies = append(n.replies, c)
	return true
}

// entry preserva a ordem de chegada: ou um comentário de topo, ou uma resposta que veio inline.
type entry struct {
	top    *node
	inline *platform.Item
}

// tree acumula um walk inteiro: dedup por id entre páginas e reclassificação de respostas inline.
type tree struct {
	seen    map[string]struct{}
	top     map[string]*node
	order   []entry
	replies int

	caption  string
	videoURL string
	captured bool
}

func newTree() *tree {
	return &tree{
		seen: map[string]struct{}{},
		top:  map[string]*node{},
	}
}

// markSeen devolve false se o id já apareceu neste walk.
func (t *tree) markSeen(id string) bool {
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	return true
}

func (t *tree) capture(info platform.ShareInfo) {
	if t.captured {
		return
	}
	t.captured = true
	t.caption = info.Caption()
	t.videoURL = info.URL
}

func (t *tree) addTop(it platform.Item, replies []comment.Comment) {
	n := &node{item: it, replyIDs: make(map[string]struct{}, len(replies))}
	for _, r := range replies {
		if n.appendReply(r) {
			t.replies++
		}
	}
	t.top[it.CID] = n
	t.order = append(t.order, entry{top: n})
}

// addInline guarda um registro com reply_id vindo no fluxo de topo.
// O pai pode chegar numa página seguinte, então a decisão fica para materialize.
func (t *tree) addInline(it platform.Item) {
	t.order = append(t.order, entry{inline: &it})
	t.replies++
}

func (t *tree) topCount() int {
	return len(t.top)
}

// materialize resolve as respostas inline e constrói a lista final, uma única vez.
// Resposta cujo pai não está entre os comentários de topo do walk fica no topo,
// com parent_comment_id preenchido e is_orphan_reply = true.
func (t *tree) materialize() []comment.Comment {
	orphans := map[*platform.Item]bool{}
	for _, e := range t.order {
		if e.inline == nil {
			continue
		}
		parentID := e.inline.ReplyTarget()
		parent, ok := t.top[parentID]
		if !ok {
			orphans[e.inline] = true
			continue
		}
		parent.appendReply(e.inline.Comment(parentID, nil))
	}

	out := make([]comment.Comment, 0, len(t.order))
	for _, e := range t.order {
		switch {
		case e.top != nil:
			out = append(out, e.top.item.Comment("", e.top.replies))
		case orphans[e.inline]:
			c := e.inline.Comment(e.inline.ReplyTarget(), nil)
			c.IsOrphanReply = true
			out = append(out, c)
		}
	}
	return out
}
