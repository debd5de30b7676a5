// Package neo4jmirror stores run-scoped copies of the note graph in Neo4j.
//
// Layout:
//
//	(:Note {run_id, path, ...})-[:TYPED_LINK {run_id, rel, to_wikilink, position, edge_key}]->(:Target {run_id, target})
//	(:Target)-[:RESOLVES_TO {run_id, matched_by}]->(:Note)
//	(:MirrorState {name: 'default', active_run_id, status, last_success_at, last_error, last_error_at})
//
// Every statement filters on run_id; the store never guesses the current run.
package neo4jmirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"notegraph/internal/config"
	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

const stateName = "default"

var schemaStatements = []string{
	`CREATE CONSTRAINT note_run_path IF NOT EXISTS FOR (n:Note) REQUIRE (n.run_id, n.path) IS UNIQUE`,
	`CREATE CONSTRAINT target_run_target IF NOT EXISTS FOR (t:Target) REQUIRE (t.run_id, t.target) IS UNIQUE`,
	`CREATE CONSTRAINT mirror_state_name IF NOT EXISTS FOR (m:MirrorState) REQUIRE m.name IS UNIQUE`,
}

// Store implements ports.MirrorStore on a Neo4j database
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// Ensure Store implements MirrorStore
var _ ports.MirrorStore = (*Store)(nil)

// Open validates conn, connects and verifies connectivity. Incomplete
// settings fail with a *config.ConfigError before any network access.
func Open(ctx context.Context, conn config.Connection, logger *slog.Logger) (*Store, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(conn.URI, neo4j.BasicAuth(conn.Username, conn.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable at %s: %w", conn.URI, err)
	}

	logger.Debug("connected to neo4j", "uri", conn.URI, "database", conn.Database)
	return &Store{driver: driver, database: conn.Database, logger: logger}, nil
}

// Close releases the driver
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// write runs one statement in its own write transaction
func (s *Store) write(ctx context.Context, query string, params map[string]any) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	return err
}

// read runs one statement in a read transaction and collects its records
func (s *Store) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return records.([]*neo4j.Record), nil
}

// EnsureSchema creates the uniqueness constraints, one transaction each
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := s.write(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// WriteNotes upserts notes keyed by (run_id, path)
func (s *Store) WriteNotes(ctx context.Context, runID string, rows []domain.Note) error {
	if len(rows) == 0 {
		return nil
	}
	params := make([]map[string]any, len(rows))
	for i, n := range rows {
		params[i] = map[string]any{
			"path":    n.Path,
			"note_id": n.NoteID,
			"created": n.Created,
			"updated": n.Updated,
			"title":   n.Title,
			"summary": n.Summary,
			"entity":  n.Entity,
			"layer":   n.Layer,
			"status":  n.Status,
		}
	}
	return s.write(ctx, `
		UNWIND $rows AS row
		MERGE (n:Note {run_id: $runId, path: row.path})
		SET n.note_id = row.note_id,
		    n.created = row.created,
		    n.updated = row.updated,
		    n.title = row.title,
		    n.summary = row.summary,
		    n.entity = row.entity,
		    n.layer = row.layer,
		    n.status = row.status
	`, map[string]any{"runId": runID, "rows": params})
}

// WriteTargets upserts targets keyed by (run_id, target)
func (s *Store) WriteTargets(ctx context.Context, runID string, rows []domain.Target) error {
	if len(rows) == 0 {
		return nil
	}
	params := make([]map[string]any, len(rows))
	for i, t := range rows {
		params[i] = map[string]any{"target": t.Target}
	}
	return s.write(ctx, `
		UNWIND $rows AS row
		MERGE (:Target {run_id: $runId, target: row.target})
	`, map[string]any{"runId": runID, "rows": params})
}

// WriteTypedLinks creates note→target edges. Rows whose note or target is
// not staged are dropped by the MATCH and surface in the count check.
func (s *Store) WriteTypedLinks(ctx context.Context, runID string, rows []domain.TypedLink) error {
	if len(rows) == 0 {
		return nil
	}
	params := make([]map[string]any, len(rows))
	for i, l := range rows {
		params[i] = map[string]any{
			"from_path":   l.FromPath,
			"rel":         l.Rel,
			"to_target":   l.ToTarget,
			"to_wikilink": l.ToWikilink,
			"position":    int64(l.Position),
			"edge_key":    l.EdgeKey(),
		}
	}
	return s.write(ctx, `
		UNWIND $rows AS row
		MATCH (n:Note {run_id: $runId, path: row.from_path})
		MATCH (t:Target {run_id: $runId, target: row.to_target})
		CREATE (n)-[:TYPED_LINK {
			run_id: $runId,
			rel: row.rel,
			to_wikilink: row.to_wikilink,
			position: row.position,
			edge_key: row.edge_key
		}]->(t)
	`, map[string]any{"runId": runID, "rows": params})
}

// WriteResolvedLinks creates target→note edges
func (s *Store) WriteResolvedLinks(ctx context.Context, runID string, rows []domain.ResolvedLink) error {
	if len(rows) == 0 {
		return nil
	}
	params := make([]map[string]any, len(rows))
	for i, r := range rows {
		params[i] = map[string]any{"target": r.Target, "path": r.Path, "matched_by": r.MatchedBy}
	}
	return s.write(ctx, `
		UNWIND $rows AS row
		MATCH (t:Target {run_id: $runId, target: row.target})
		MATCH (n:Note {run_id: $runId, path: row.path})
		CREATE (t)-[:RESOLVES_TO {run_id: $runId, matched_by: row.matched_by}]->(n)
	`, map[string]any{"runId": runID, "rows": params})
}

// CountRun reads back the row totals of one run
func (s *Store) CountRun(ctx context.Context, runID string) (domain.MirrorCounts, error) {
	records, err := s.read(ctx, `
		CALL { MATCH (n:Note {run_id: $runId}) RETURN count(n) AS notes }
		CALL { MATCH (:Note {run_id: $runId})-[l:TYPED_LINK {run_id: $runId}]->(:Target {run_id: $runId}) RETURN count(l) AS typed_links }
		CALL { MATCH (t:Target {run_id: $runId}) RETURN count(t) AS targets }
		CALL { MATCH (:Target {run_id: $runId})-[r:RESOLVES_TO {run_id: $runId}]->(:Note {run_id: $runId}) RETURN count(r) AS resolved_links }
		RETURN notes, typed_links, targets, resolved_links
	`, map[string]any{"runId": runID})
	if err != nil {
		return domain.MirrorCounts{}, err
	}
	if len(records) == 0 {
		return domain.MirrorCounts{}, nil
	}
	rec := records[0]
	return domain.MirrorCounts{
		Notes:         intFromRecord(rec, "notes"),
		TypedLinks:    intFromRecord(rec, "typed_links"),
		Targets:       intFromRecord(rec, "targets"),
		ResolvedLinks: intFromRecord(rec, "resolved_links"),
	}, nil
}

// ReadState returns the singleton state record, or nil if absent
func (s *Store) ReadState(ctx context.Context) (*domain.MirrorState, error) {
	records, err := s.read(ctx, `
		MATCH (m:MirrorState {name: $name})
		RETURN m.active_run_id AS active_run_id,
		       m.status AS status,
		       m.last_success_at AS last_success_at,
		       m.last_error AS last_error,
		       m.last_error_at AS last_error_at
	`, map[string]any{"name": stateName})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	return &domain.MirrorState{
		ActiveRunID:   stringFromRecord(rec, "active_run_id"),
		Status:        domain.ParseMirrorStatus(stringFromRecord(rec, "status")),
		LastSuccessAt: timeFromRecord(rec, "last_success_at"),
		LastError:     stringFromRecord(rec, "last_error"),
		LastErrorAt:   timeFromRecord(rec, "last_error_at"),
	}, nil
}

// MarkActive is the cutover: one MERGE+SET in one transaction
func (s *Store) MarkActive(ctx context.Context, runID string, at time.Time) error {
	return s.write(ctx, `
		MERGE (m:MirrorState {name: $name})
		SET m.active_run_id = $runId,
		    m.status = 'ok',
		    m.last_success_at = $at,
		    m.last_error = null,
		    m.last_error_at = null
	`, map[string]any{"name": stateName, "runId": runID, "at": formatTime(at)})
}

// MarkError records a failure and leaves active_run_id as it is
func (s *Store) MarkError(ctx context.Context, message string, at time.Time) error {
	return s.write(ctx, `
		MERGE (m:MirrorState {name: $name})
		SET m.status = 'error',
		    m.last_error = $message,
		    m.last_error_at = $at
	`, map[string]any{"name": stateName, "message": message, "at": formatTime(at)})
}

// NoteExists reports whether path is a note of runID
func (s *Store) NoteExists(ctx context.Context, runID, path string) (bool, error) {
	records, err := s.read(ctx, `
		MATCH (n:Note {run_id: $runId, path: $path})
		RETURN count(n) AS found
	`, map[string]any{"runId": runID, "path": path})
	if err != nil {
		return false, err
	}
	return len(records) > 0 && intFromRecord(records[0], "found") > 0, nil
}

// OutgoingLinks returns typed links from path with their resolved notes
func (s *Store) OutgoingLinks(ctx context.Context, runID, path string, includeUnresolved bool, limit int) ([]domain.LinkRow, error) {
	records, err := s.read(ctx, `
		MATCH (n:Note {run_id: $runId, path: $path})-[l:TYPED_LINK {run_id: $runId}]->(t:Target {run_id: $runId})
		OPTIONAL MATCH (t)-[:RESOLVES_TO {run_id: $runId}]->(m:Note {run_id: $runId})
		WITH n, l, t, m
		WHERE $includeUnresolved OR m IS NOT NULL
		RETURN n.path AS from_path,
		       l.rel AS rel,
		       t.target AS target,
		       l.to_wikilink AS to_wikilink,
		       l.position AS position,
		       m.path AS to_path
		ORDER BY position, rel, target, to_path
		LIMIT $limit
	`, map[string]any{
		"runId":             runID,
		"path":              path,
		"includeUnresolved": includeUnresolved,
		"limit":             int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return linkRows(records), nil
}

// IncomingLinks returns typed links of other notes whose target resolves to path
func (s *Store) IncomingLinks(ctx context.Context, runID, path string, limit int) ([]domain.LinkRow, error) {
	records, err := s.read(ctx, `
		MATCH (m:Note {run_id: $runId})-[l:TYPED_LINK {run_id: $runId}]->(t:Target {run_id: $runId})
		      -[:RESOLVES_TO {run_id: $runId}]->(n:Note {run_id: $runId, path: $path})
		RETURN m.path AS from_path,
		       l.rel AS rel,
		       t.target AS target,
		       l.to_wikilink AS to_wikilink,
		       l.position AS position,
		       n.path AS to_path
		ORDER BY from_path, position, rel, target
		LIMIT $limit
	`, map[string]any{"runId": runID, "path": path, "limit": int64(limit)})
	if err != nil {
		return nil, err
	}
	return linkRows(records), nil
}

// PruneRuns detach-deletes notes and targets of every run but keepRunID
func (s *Store) PruneRuns(ctx context.Context, keepRunID string) (int, error) {
	records, err := s.read(ctx, `
		MATCH (n)
		WHERE (n:Note OR n:Target) AND n.run_id <> $keep
		RETURN count(DISTINCT n.run_id) AS runs
	`, map[string]any{"keep": keepRunID})
	if err != nil {
		return 0, err
	}
	runs := 0
	if len(records) > 0 {
		runs = intFromRecord(records[0], "runs")
	}
	if runs == 0 {
		return 0, nil
	}

	// CALL ... IN TRANSACTIONS needs an implicit transaction
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	result, err := session.Run(ctx, `
		MATCH (n)
		WHERE (n:Note OR n:Target) AND n.run_id <> $keep
		CALL { WITH n DETACH DELETE n } IN TRANSACTIONS OF 1000 ROWS
	`, map[string]any{"keep": keepRunID})
	if err != nil {
		return 0, err
	}
	if _, err := result.Consume(ctx); err != nil {
		return 0, err
	}
	s.logger.Info("pruned superseded runs", "runs", runs, "kept", keepRunID)
	return runs, nil
}
