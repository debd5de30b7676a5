package sqlite

import (
	"context"
	"database/sql"

	"notegraph/internal/domain"
)

// indexTx batches the inserts of one rebuild
type indexTx struct {
	tx       *sql.Tx
	noteStmt *sql.Stmt
	linkStmt *sql.Stmt
}

func (idx *Index) beginTx(ctx context.Context) (*indexTx, error) {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	noteStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO notes (path, note_id, created, updated, title, summary, entity, layer, status, basename, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO typed_links (from_path, rel, to_target, to_wikilink, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &indexTx{tx: tx, noteStmt: noteStmt, linkStmt: linkStmt}, nil
}

// Clear removes all notes and links
func (t *indexTx) Clear(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM typed_links`); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM notes`)
	return err
}

// UpsertNote inserts or replaces a note
func (t *indexTx) UpsertNote(ctx context.Context, n domain.Note, mtime int64) error {
	_, err := t.noteStmt.ExecContext(ctx, n.Path, n.NoteID, n.Created, n.Updated, n.Title, n.Summary,
		n.Entity, n.Layer, n.Status, noteBasename(n.Path), mtime)
	return err
}

// InsertLink adds a typed link
func (t *indexTx) InsertLink(ctx context.Context, l domain.TypedLink) error {
	_, err := t.linkStmt.ExecContext(ctx, l.FromPath, l.Rel, l.ToTarget, l.ToWikilink, l.Position)
	return err
}

// SetMeta records a metadata value
func (t *indexTx) SetMeta(ctx context.Context, key string, value any) error {
	_, err := t.tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}
