package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notegraph/internal/adapters/neo4jmirror"
	"notegraph/internal/adapters/sqlite"
	"notegraph/internal/application"
	"notegraph/internal/config"
	"notegraph/internal/ports"
)

var (
	configPath string
	vaultPath  string
	sourceDB   string
	logLevel   string
	logJSON    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "notegraph-cli",
	Short: "Mirror a note vault's link graph into Neo4j",
	Long: `notegraph-cli keeps a Neo4j mirror of the typed links between the notes
of a markdown vault.

The vault is first indexed into a local SQLite store (index), which is then
copied into the graph database under a fresh run id (sync). Reads (status,
traverse) always go to the last run that passed validation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("vault") {
			cfg.Vault = config.ExpandHome(vaultPath)
			if !flags.Changed("source-db") {
				cfg.SourceDB = config.DatabasePath(cfg.Vault)
			}
		}
		if flags.Changed("source-db") {
			cfg.SourceDB = config.ExpandHome(sourceDB)
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		logger = config.NewLogger(os.Stderr, cfg.LogLevel, logJSON)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $"+config.EnvConfig+")")
	flags.StringVarP(&vaultPath, "vault", "v", config.VaultPath(), "path to the vault")
	flags.StringVar(&sourceDB, "source-db", "", "path to the SQLite index (default: per-vault file under the XDG data dir)")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.BoolVar(&logJSON, "log-json", false, "log as JSON")
}

// openSource opens the SQLite index of the configured vault
func openSource() (*sqlite.Index, error) {
	idx := sqlite.NewIndex()
	if err := idx.Open(cfg.Vault, cfg.SourceDB); err != nil {
		return nil, err
	}
	return idx, nil
}

// openMirror connects to the configured graph database
func openMirror(ctx context.Context) (ports.MirrorStore, error) {
	return neo4jmirror.Open(ctx, cfg.Neo4j, logger)
}

// mirrorServices wires the application services over store
func mirrorServices(store ports.MirrorStore) (*application.Syncer, *application.Traverser, *application.RunManager) {
	runs := application.NewRunManager(store)
	return application.NewSyncer(store, runs, logger), application.NewTraverser(store, runs, logger), runs
}

// printJSON writes v as indented JSON to stdout
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
