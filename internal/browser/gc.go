package browser

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OrphanProfileTTL é a idade a partir da qual um perfil é considerado abandonado.
const OrphanProfileTTL = 90 * time.Minute

// StartProfileSweeper periodicamente verifica e remove pastas de perfis de browsers
// temporários (órfãos) que ficaram para trás após um crash ou vazamento. Para quando ctx acaba.
func StartProfileSweeper(ctx context.Context, baseDir string, every time.Duration, logger *log.Logger) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if logger == nil {
		logger = log.Default()
	}
	logger.Println("[GC] Iniciando Profile Sweeper...")

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			SweepOrphanProfiles(baseDir, OrphanProfileTTL, logger)
		}
	}
}

// SweepOrphanProfiles remove perfis argus_profile_* mais velhos que ttl e devolve quantos removeu.
func SweepOrphanProfiles(baseDir string, ttl time.Duration, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		logger.Printf("[GC] Erro lendo diretório base %s: %v", baseDir, err)
		return 0
	}

	removed := 0
	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ProfilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		fullPath := filepath.Join(baseDir, entry.Name())
		if err := os.RemoveAll(fullPath); err != nil {
			logger.Printf("[GC] Erro removendo perfil órfão %s: %v", fullPath, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Printf("[GC] 🧹 Sweeper removeu %d perfis órfãos do diretório temporário.", removed)
	}
	return removed
}
