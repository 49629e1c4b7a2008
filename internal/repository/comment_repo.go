// Package repository grava os resultados de scraping no PostgreSQL. É a ingestão que alimenta
// o board: achata a árvore e recalcula is_orphan_reply com tudo que já existe do vídeo.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/loviiin/argus-comments/internal/comment"
)

// SaveStats resume uma gravação.
type SaveStats struct {
	Rows    int
	Orphans int
}

// CommentRepository usa uma única conexão; não é seguro para uso concorrente.
type CommentRepository struct {
	db *pgx.Conn
}

func NewCommentRepository(ctx context.Context, databaseURL string) (*CommentRepository, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("banco não responde: %w", err)
	}

	repo := &CommentRepository{db: conn}
	if err := repo.runMigrations(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("falha ao criar tabelas: %w", err)
	}
	return repo, nil
}

const upsertScrape = `
	INSERT INTO scrapes (platform, video_id, caption, video_url, needs_auth, total_comments, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (platform, video_id) DO UPDATE
	SET caption = COALESCE(NULLIF(EXCLUDED.caption, ''), scrapes.caption),
	    video_url = COALESCE(NULLIF(EXCLUDED.video_url, ''), scrapes.video_url),
	    needs_auth = EXCLUDED.needs_auth,
	    total_comments = EXCLUDED.total_comments,
	    scraped_at = NOW()
	RETURNING id`

const upsertComment = `
	INSERT INTO comments (platform, video_id, comment_id, parent_comment_id, username, nickname, text,
	                      create_time, avatar, total_reply, position, updated_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, NOW())
	ON CONFLICT (platform, video_id, comment_id) DO UPDATE
	SET parent_comment_id = EXCLUDED.parent_comment_id,
	    text = EXCLUDED.text,
	    total_reply = EXCLUDED.total_reply,
	    avatar = EXCLUDED.avatar,
	    position = EXCLUDED.position,
	    updated_at = NOW()`

// reclassifyOrphans marca como órfã toda resposta cujo pai não existe como comentário de topo do vídeo.
// Roda depois de cada gravação: um pai que chega num scraping posterior "adota" respostas antigas.
const reclassifyOrphans = `
	UPDATE comments c
	SET is_orphan_reply = (c.parent_comment_id IS NOT NULL AND NOT EXISTS (
		SELECT 1 FROM comments p
		WHERE p.platform = c.platform AND p.video_id = c.video_id
		  AND p.comment_id = c.parent_comment_id AND p.parent_comment_id IS NULL
	))
	WHERE c.platform = $1 AND c.video_id = $2`

// Save grava o resultado de um scraping numa transação e devolve quantas linhas e órfãs ficaram.
// Resultados de muro de login só atualizam a tabela scrapes.
func (r *CommentRepository) Save(ctx context.Context, platform, videoID string, res *comment.Comments) (SaveStats, error) {
	var stats SaveStats
	records := comment.Flatten(videoID, res.Comments)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("abrindo transação: %w", err)
	}
	defer tx.Rollback(ctx)

	var scrapeID string
	if err := tx.QueryRow(ctx, upsertScrape, platform, videoID, res.Caption, res.VideoURL, res.NeedsAuth, len(records)).Scan(&scrapeID); err != nil {
		return stats, fmt.Errorf("gravando scrape %s/%s: %w", platform, videoID, err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(upsertComment, platform, videoID, rec.CommentID, rec.ParentCommentID, rec.Username,
				rec.Nickname, rec.Text, parseCreateTime(rec.CreateTime), rec.Avatar, rec.TotalReply, rec.Position)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return stats, fmt.Errorf("gravando comentários de %s/%s: %w", platform, videoID, err)
		}
	}

	if _, err := tx.Exec(ctx, reclassifyOrphans, platform, videoID); err != nil {
		return stats, fmt.Errorf("recalculando órfãs: %w", err)
	}
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_orphan_reply) FROM comments WHERE platform = $1 AND video_id = $2`,
		platform, videoID).Scan(&stats.Rows, &stats.Orphans); err != nil {
		return stats, err
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit: %w", err)
	}
	return stats, nil
}

// List devolve os registros do vídeo na ordem em que foram extraídos.
func (r *CommentRepository) List(ctx context.Context, platform, videoID string) ([]comment.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT comment_id, COALESCE(parent_comment_id, ''), COALESCE(username, ''), COALESCE(nickname, ''),
		       COALESCE(text, ''), create_time, COALESCE(avatar, ''), total_reply, is_orphan_reply, position
		FROM comments WHERE platform = $1 AND video_id = $2
		ORDER BY position, comment_id`, platform, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comment.Record
	for rows.Next() {
		rec := comment.Record{VideoID: videoID}
		var created *time.Time
		if err := rows.Scan(&rec.CommentID, &rec.ParentCommentID, &rec.Username, &rec.Nickname, &rec.Text,
			&created, &rec.Avatar, &rec.TotalReply, &rec.IsOrphanReply, &rec.Position); err != nil {
			return nil, err
		}
		if created != nil {
			rec.CreateTime = created.UTC().Format(comment.TimeLayout)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *CommentRepository) Close(ctx context.Context) {
	r.db.Close(ctx)
}

func parseCreateTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(comment.TimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
