package search

import (
	"fmt"
	"log"
	"regexp"

	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/meilisearch/meilisearch-go"
)

const primaryKey = "id"

// CommentDoc define a estrutura do documento no Meilisearch
type CommentDoc struct {
	ID              string `json:"id"`
	Platform        string `json:"platform"`
	VideoID         string `json:"video_id"`
	CommentID       string `json:"comment_id"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
	Username        string `json:"username"`
	Nickname        string `json:"nickname"`
	Text            string `json:"text"`
	CreateTime      string `json:"create_time,omitempty"`
	TotalReply      int    `json:"total_reply"`
	IsReply         bool   `json:"is_reply"`
	IsOrphanReply   bool   `json:"is_orphan_reply"`
	Caption         string `json:"caption,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
}

var invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DocID monta uma chave primária válida no Meilisearch (só [a-zA-Z0-9_-]).
func DocID(platform, videoID, commentID string) string {
	return invalidIDChars.ReplaceAllString(platform+"_"+videoID+"_"+commentID, "-")
}

// Docs converte um resultado de scraping em documentos, um por comentário ou resposta.
func Docs(platform, videoID string, res *comment.Comments) []CommentDoc {
	records := comment.Flatten(videoID, res.Comments)
	docs := make([]CommentDoc, 0, len(records))
	for _, r := range records {
		docs = append(docs, CommentDoc{
			ID:              DocID(platform, videoID, r.CommentID),
			Platform:        platform,
			VideoID:         videoID,
			CommentID:       r.CommentID,
			ParentCommentID: r.ParentCommentID,
			Username:        r.Username,
			Nickname:        r.Nickname,
			Text:            r.Text,
			CreateTime:      r.CreateTime,
			TotalReply:      r.TotalReply,
			IsReply:         r.ParentCommentID != "",
			IsOrphanReply:   r.IsOrphanReply,
			Caption:         res.Caption,
			VideoURL:        res.VideoURL,
		})
	}
	return docs
}

// Indexer é a struct que guarda a conexão aberta
type Indexer struct {
	client    meilisearch.ServiceManager
	indexName string
}

// NewIndexer cria a conexão e garante que o índice existe com os atributos de busca e filtro.
func NewIndexer(host, apiKey, indexName string) *Indexer {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))

	_, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        indexName,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		log.Printf("Aviso Meilisearch: %v", err)
	}

	idx := client.Index(indexName)
	idx.UpdateSearchableAttributes(&[]string{"text", "username", "nickname", "caption"})
	idx.UpdateSortableAttributes(&[]string{"create_time", "total_reply"})

	filterableAttrs := []interface{}{"platform", "video_id", "is_reply", "is_orphan_reply", "parent_comment_id"}
	idx.UpdateFilterableAttributes(&filterableAttrs)

	log.Println("Conectado ao Meilisearch!")
	return &Indexer{client: client, indexName: indexName}
}

// IndexComments faz upsert de todos os comentários do resultado. Resultados vazios não geram task.
func (i *Indexer) IndexComments(platform, videoID string, res *comment.Comments) (int, error) {
	docs := Docs(platform, videoID, res)
	if len(docs) == 0 {
		return 0, nil
	}
	pk := primaryKey
	task, err := i.client.Index(i.indexName).UpdateDocuments(docs, &meilisearch.DocumentOptions{PrimaryKey: &pk})
	if err != nil {
		return 0, fmt.Errorf("erro ao indexar comentários de %s/%s: %w", platform, videoID, err)
	}
	log.Printf("Enviado para Meilisearch (Task UID: %d): %d documentos de %s/%s", task.TaskUID, len(docs), platform, videoID)
	return len(docs), nil
}

// GetComment busca um documento específico no Meilisearch
func (i *Indexer) GetComment(platform, videoID, commentID string) (*CommentDoc, error) {
	var doc CommentDoc
	err := i.client.Index(i.indexName).GetDocument(DocID(platform, videoID, commentID), &meilisearch.DocumentQuery{}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
