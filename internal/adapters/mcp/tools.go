// Package mcp exposes the graph mirror as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"notegraph/internal/application"
	"notegraph/internal/ports"
)

// StoreOpener connects to the mirror store. It is called on first use so the
// server starts even when the graph database is not configured.
type StoreOpener func(ctx context.Context) (ports.MirrorStore, error)

// Tools holds what the MCP handlers need to reach the canonical store and the mirror
type Tools struct {
	source  ports.GraphSource
	indexer ports.VaultIndexer
	open    StoreOpener
	logger  *slog.Logger

	mu    sync.Mutex
	store ports.MirrorStore
}

// NewTools creates the tool set. A nil logger uses slog.Default().
func NewTools(source ports.GraphSource, indexer ports.VaultIndexer, open StoreOpener, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{source: source, indexer: indexer, open: open, logger: logger}
}

// Register adds every mirror tool to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(statusTool(), t.statusHandler)
	s.AddTool(syncTool(), t.syncHandler)
	s.AddTool(traverseTool(), t.traverseHandler)
	s.AddTool(pruneTool(), t.pruneHandler)
	s.AddTool(indexTool(), t.indexHandler)
}

// Close releases the mirror store if it was opened
func (t *Tools) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store == nil {
		return nil
	}
	err := t.store.Close(ctx)
	t.store = nil
	return err
}

// mirror returns the connected store, opening it on first use.
// A failed open is retried on the next call.
func (t *Tools) mirror(ctx context.Context) (ports.MirrorStore, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store != nil {
		return t.store, nil
	}
	store, err := t.open(ctx)
	if err != nil {
		return nil, err
	}
	t.store = store
	return store, nil
}

// services builds the application services over the connected store
func (t *Tools) services(ctx context.Context) (*application.Syncer, *application.Traverser, *application.RunManager, error) {
	store, err := t.mirror(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	runs := application.NewRunManager(store)
	return application.NewSyncer(store, runs, t.logger), application.NewTraverser(store, runs, t.logger), runs, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// jsonResult renders v as indented JSON text
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return mcp.NewToolResultText(string(data)), nil
}
