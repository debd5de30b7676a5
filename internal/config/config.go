package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultVaultPath = "~/Documents/notes"
	DefaultDatabase  = "neo4j"
	DefaultLogLevel  = "info"
)

// Environment variables
const (
	EnvConfig        = "NOTEGRAPH_CONFIG"
	EnvVault         = "NOTEGRAPH_VAULT"
	EnvSourceDB      = "NOTEGRAPH_SOURCE_DB"
	EnvNeo4jURI      = "NOTEGRAPH_NEO4J_URI"
	EnvNeo4jUsername = "NOTEGRAPH_NEO4J_USERNAME"
	EnvNeo4jPassword = "NOTEGRAPH_NEO4J_PASSWORD"
	EnvNeo4jDatabase = "NOTEGRAPH_NEO4J_DATABASE"
	EnvLogLevel      = "NOTEGRAPH_LOG_LEVEL"
	EnvBatchSize     = "NOTEGRAPH_SYNC_BATCH_SIZE"
)

// ErrIntegrationUnavailable is returned when the mirror store is not configured
var ErrIntegrationUnavailable = errors.New("graph mirror integration unavailable")

// ConfigError lists the connection settings that are missing
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("graph mirror integration unavailable: missing %s (set %s or the neo4j section of the config file)",
		strings.Join(e.Missing, ", "), EnvNeo4jURI)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrIntegrationUnavailable
}

// Connection holds the mirror store connection settings
type Connection struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Validate reports every missing setting before any connection is attempted
func (c Connection) Validate() error {
	var missing []string
	if strings.TrimSpace(c.URI) == "" {
		missing = append(missing, "uri")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// SyncConfig holds sync tuning
type SyncConfig struct {
	BatchSize               int `yaml:"batch_size"`
	MaxResolutionsPerTarget int `yaml:"max_resolutions_per_target"`
}

// Config is the resolved configuration
type Config struct {
	Vault    string     `yaml:"vault"`
	SourceDB string     `yaml:"source_db"`
	LogLevel string     `yaml:"log_level"`
	Neo4j    Connection `yaml:"neo4j"`
	Sync     SyncConfig `yaml:"sync"`
}

// Load resolves configuration from defaults, the YAML file at path (or
// $NOTEGRAPH_CONFIG when path is empty) and the environment, in that order.
// A missing file is not an error when path was not given explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Vault:    DefaultVaultPath,
		LogLevel: DefaultLogLevel,
		Neo4j:    Connection{Database: DefaultDatabase},
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultDatabase
	}
	cfg.Vault = ExpandHome(cfg.Vault)
	if cfg.SourceDB == "" {
		cfg.SourceDB = DatabasePath(cfg.Vault)
	}
	cfg.SourceDB = ExpandHome(cfg.SourceDB)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Vault, EnvVault)
	setString(&cfg.SourceDB, EnvSourceDB)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.Neo4j.URI, EnvNeo4jURI)
	setString(&cfg.Neo4j.Username, EnvNeo4jUsername)
	setString(&cfg.Neo4j.Password, EnvNeo4jPassword)
	setString(&cfg.Neo4j.Database, EnvNeo4jDatabase)
	if v := os.Getenv(EnvBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.BatchSize = n
		}
	}
}

// VaultPath returns the vault path from NOTEGRAPH_VAULT env var,
// falling back to DefaultVaultPath.
func VaultPath() string {
	if env := os.Getenv(EnvVault); env != "" {
		return env
	}
	return DefaultVaultPath
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DatabasePath returns the canonical SQLite database path for a vault
func DatabasePath(vaultPath string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "notegraph", hashVaultPath(vaultPath)+".db")
}

// hashVaultPath returns a short hash of the vault path
func hashVaultPath(vaultPath string) string {
	h := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(h[:8])
}
