package repository

import (
	"context"
	"fmt"
	"log"
)

var migrations = []struct {
	name  string
	query string
}{
	{
		name: "001_scrapes",
		query: `CREATE TABLE IF NOT EXISTS scrapes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			platform VARCHAR(32) NOT NULL,
			video_id VARCHAR(64) NOT NULL,
			caption TEXT,
			video_url TEXT,
			needs_auth BOOLEAN NOT NULL DEFAULT FALSE,
			total_comments INT NOT NULL DEFAULT 0,
			scraped_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(platform, video_id)
		);`,
	},
	{
		name: "002_comments",
		query: `CREATE TABLE IF NOT EXISTS comments (
			platform VARCHAR(32) NOT NULL,
			video_id VARCHAR(64) NOT NULL,
			comment_id VARCHAR(64) NOT NULL,
			parent_comment_id VARCHAR(64),
			username VARCHAR(255),
			nickname VARCHAR(255),
			text TEXT,
			create_time TIMESTAMP,
			avatar TEXT,
			total_reply INT NOT NULL DEFAULT 0,
			is_orphan_reply BOOLEAN NOT NULL DEFAULT FALSE,
			position INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			PRIMARY KEY (platform, video_id, comment_id)
		);`,
	},
	{
		name:  "003_comments_parent_idx",
		query: `CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(platform, video_id, parent_comment_id);`,
	},
}

// runMigrations é idempotente: todas as migrations usam IF NOT EXISTS.
func (r *CommentRepository) runMigrations(ctx context.Context) error {
	log.Println("Verificando schema do banco de dados...")
	for _, m := range migrations {
		if _, err := r.db.Exec(ctx, m.query); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	log.Println("Migrations concluídas.")
	return nil
}
