package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notegraph/internal/domain"
)

// Rebuild replaces the index with the notes and links found in the vault.
// Unreadable files are skipped; the swap is a single transaction.
func (idx *Index) Rebuild(ctx context.Context) (*domain.IndexStats, error) {
	start := time.Now()
	stats := &domain.IndexStats{}

	if _, err := os.Stat(idx.vaultPath); err != nil {
		return nil, fmt.Errorf("vault not accessible: %w", err)
	}

	tx, err := idx.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := tx.Clear(ctx); err != nil {
		return nil, err
	}

	err = filepath.WalkDir(idx.vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip hidden directories
		if d.IsDir() {
			if path != idx.vaultPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		stats.FilesScanned++

		info, err := d.Info()
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(idx.vaultPath, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		note, links := parseNote(relPath, content, info.ModTime())
		if err := tx.UpsertNote(ctx, note, info.ModTime().Unix()); err != nil {
			return fmt.Errorf("failed to index %s: %w", relPath, err)
		}
		stats.NotesAdded++

		for _, l := range links {
			if err := tx.InsertLink(ctx, l); err != nil {
				return fmt.Errorf("failed to index link %s in %s: %w", l.ToWikilink, relPath, err)
			}
			stats.LinksAdded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := tx.SetMeta(ctx, "last_sync_time", time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
