package search

import (
	"testing"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocID(t *testing.T) {
	assert.Equal(t, "tiktok_7301_c1", DocID("tiktok", "7301", "c1"))
	assert.Equal(t, "douyin_7_a-b-c", DocID("douyin", "7", "a.b/c"))
}

func TestDocs(t *testing.T) {
	res := comment.NewComments("legenda", "https://www.tiktok.com/@a/video/7301", []comment.Comment{
		{CommentID: "c1", Username: "ana", Comment: "oi", TotalReply: 1, Replies: []comment.Comment{
			{CommentID: "r1", Username: "bia", Comment: "olá", ParentCommentID: "c1"},
		}},
		{CommentID: "r9", Comment: "solta", ParentCommentID: "c404", IsOrphanReply: true},
	})

	docs := Docs("tiktok", "7301", res)
	require.Len(t, docs, 3)

	assert.Equal(t, "tiktok_7301_c1", docs[0].ID)
	assert.False(t, docs[0].IsReply)
	assert.Equal(t, "legenda", docs[0].Caption)

	assert.Equal(t, "r1", docs[1].CommentID)
	assert.True(t, docs[1].IsReply)
	assert.False(t, docs[1].IsOrphanReply)

	assert.True(t, docs[2].IsOrphanReply)
	assert.Equal(t, "c404", docs[2].ParentCommentID)

	assert.Empty(t, Docs("tiktok", "1", comment.AuthRequired("login")))
}
