package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "notegraph/internal/adapters/mcp"
	"notegraph/internal/adapters/metrics"
	"notegraph/internal/adapters/neo4jmirror"
	"notegraph/internal/adapters/sqlite"
	"notegraph/internal/config"
	"notegraph/internal/ports"
)

func main() {
	configFlag := flag.String("config", "", "path to a YAML config file (default $"+config.EnvConfig+")")
	vaultFlag := flag.String("vault", "", "path to the vault (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	logJSON := flag.Bool("log-json", false, "log as JSON")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notegraph-mcp: %v\n", err)
		os.Exit(1)
	}
	if *vaultFlag != "" {
		cfg.Vault = config.ExpandHome(*vaultFlag)
		cfg.SourceDB = config.DatabasePath(cfg.Vault)
	}

	// stdout carries the MCP stream
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, *logJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx := sqlite.NewIndex()
	if err := idx.Open(cfg.Vault, cfg.SourceDB); err != nil {
		logger.Error("failed to open index", "vault", cfg.Vault, "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	tools := mcpadapter.NewTools(idx, idx, func(ctx context.Context) (ports.MirrorStore, error) {
		return neo4jmirror.Open(ctx, cfg.Neo4j, logger)
	}, logger)
	defer tools.Close(context.Background())

	go func() {
		if err := metrics.Serve(ctx, *metricsAddr, logger); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	mcpServer := server.NewMCPServer(
		"notegraph-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	tools.Register(mcpServer)

	logger.Info("notegraph-mcp ready", "vault", cfg.Vault)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("notegraph-mcp stopped", "error", err)
		os.Exit(1)
	}
}
