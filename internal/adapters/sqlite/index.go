package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notegraph/internal/config"
	"notegraph/internal/domain"
	"notegraph/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Index is the canonical relational store of the note graph. It is filled
// from a markdown vault by Rebuild and read by the mirror sync.
type Index struct {
	db        *sql.DB
	vaultPath string
	dbPath    string
}

// Ensure Index implements GraphSource and VaultIndexer
var (
	_ ports.GraphSource  = (*Index)(nil)
	_ ports.VaultIndexer = (*Index)(nil)
)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index for the given vault. An empty dbPath uses the
// per-vault path under the XDG data directory.
func (idx *Index) Open(vaultPath, dbPath string) error {
	idx.vaultPath = config.ExpandHome(vaultPath)
	if dbPath == "" {
		dbPath = config.DatabasePath(idx.vaultPath)
	}
	idx.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS notes (
			path TEXT PRIMARY KEY,
			note_id TEXT NOT NULL DEFAULT '',
			created TEXT NOT NULL DEFAULT '',
			updated TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			entity TEXT NOT NULL DEFAULT '',
			layer TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			basename TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS typed_links (
			from_path TEXT NOT NULL REFERENCES notes(path) ON DELETE CASCADE,
			rel TEXT NOT NULL,
			to_target TEXT NOT NULL,
			to_wikilink TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (from_path, position)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_basename ON notes(basename);
		CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(lower(title));
		CREATE INDEX IF NOT EXISTS idx_links_target ON typed_links(to_target);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// ListNotesForSync returns every note ordered by path
func (idx *Index) ListNotesForSync(ctx context.Context) ([]domain.Note, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT path, note_id, created, updated, title, summary, entity, layer, status
		FROM notes ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.Path, &n.NoteID, &n.Created, &n.Updated, &n.Title, &n.Summary, &n.Entity, &n.Layer, &n.Status); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ListTypedLinksForSync returns every typed link ordered by (from_path, position)
func (idx *Index) ListTypedLinksForSync(ctx context.Context) ([]domain.TypedLink, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT from_path, rel, to_target, to_wikilink, position
		FROM typed_links ORDER BY from_path, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.TypedLink
	for rows.Next() {
		var l domain.TypedLink
		if err := rows.Scan(&l.FromPath, &l.Rel, &l.ToTarget, &l.ToWikilink, &l.Position); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ResolvePathsByTarget matches a raw link target against note paths, file
// names and titles. Each note appears once, under its best match.
func (idx *Index) ResolvePathsByTarget(ctx context.Context, target string, limit int) ([]domain.Resolution, error) {
	if limit < 1 {
		return nil, nil
	}
	rows, err := idx.db.QueryContext(ctx, `
		SELECT path, matched_by, MIN(rank) AS best FROM (
			SELECT path, 'path' AS matched_by, 0 AS rank FROM notes WHERE path = ?1
			UNION ALL
			SELECT path, 'path_no_ext', 1 FROM notes WHERE path = ?1 || '.md'
			UNION ALL
			SELECT path, 'basename', 2 FROM notes WHERE basename = lower(?1)
			UNION ALL
			SELECT path, 'title', 3 FROM notes WHERE lower(title) = lower(?1)
		)
		GROUP BY path
		ORDER BY best, path
		LIMIT ?2
	`, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Resolution
	for rows.Next() {
		var r domain.Resolution
		var rank int
		if err := rows.Scan(&r.Path, &r.MatchedBy, &rank); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetGraphCounts returns the number of notes and typed links
func (idx *Index) GetGraphCounts(ctx context.Context) (domain.Counts, error) {
	var c domain.Counts
	err := idx.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM notes), (SELECT COUNT(*) FROM typed_links)
	`).Scan(&c.Notes, &c.TypedLinks)
	return c, err
}

// LastRebuild returns the time of the last successful rebuild, or nil if
// the index was never rebuilt
func (idx *Index) LastRebuild(ctx context.Context) (*time.Time, error) {
	var ts int64
	err := idx.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'last_sync_time'`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last rebuild time: %w", err)
	}
	at := time.Unix(ts, 0).UTC()
	return &at, nil
}
