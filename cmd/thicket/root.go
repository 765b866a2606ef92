package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/adapters/badger"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/adapters/redis"
	"github.com/aretw0/thicket/pkg/persistence/middleware"
	"github.com/aretw0/thicket/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "thicket",
	Short: "Thicket is a conditional attack tree engine",
	Long: `Thicket models attack and risk trees whose nodes carry conditions over
project configurations. It materializes condition-resolved tree views,
follows cross-tree references into dependency graphs, and keeps an
append-only history of every tree write.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("store", "memory", "Storage backend: memory, redis or badger")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password (store=redis)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number (store=redis)")
	rootCmd.PersistentFlags().String("badger-path", "./thicket-data", "Badger data directory (store=badger)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("tenant", "default", "Tenant namespace for all operations")
	rootCmd.PersistentFlags().String("config-encryption-key", "", "Base64 32-byte key; encrypts configuration attributes at rest")
	rootCmd.PersistentFlags().StringSlice("mask-attributes", nil, "Regex patterns of attribute keys to mask before storing configurations")
}

// buildLogger constructs the process logger from the persistent flags.
func buildLogger(cmd *cobra.Command) *slog.Logger {
	format, _ := cmd.Flags().GetString("log-format")
	levelName, _ := cmd.Flags().GetString("log-level")

	level := slog.LevelInfo
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if format == "json" {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

// buildStores constructs the storage backend selected by the persistent
// flags, with the configuration middlewares applied. The returned closer
// must be called on shutdown.
func buildStores(cmd *cobra.Command, logger *slog.Logger) (ports.Stores, io.Closer, error) {
	backend, _ := cmd.Flags().GetString("store")

	var stores ports.Stores
	var closer io.Closer

	switch backend {
	case "memory":
		store := memory.NewStore()
		stores = ports.Stores{Trees: store, Configs: store, History: store}
		closer = nopCloser{}

	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		store := redis.New(addr, password, db)
		stores = ports.Stores{Trees: store, Configs: store, History: store}
		closer = store

	case "badger":
		path, _ := cmd.Flags().GetString("badger-path")
		store, err := badger.Open(badger.Config{Path: path, SyncWrites: true, Logger: logger})
		if err != nil {
			return ports.Stores{}, nil, fmt.Errorf("opening badger store at %s: %w", path, err)
		}
		stores = ports.Stores{Trees: store, Configs: store, History: store}
		closer = store

	default:
		return ports.Stores{}, nil, fmt.Errorf("unknown store backend %q (supported: memory, redis, badger)", backend)
	}

	middlewares, err := configMiddlewares(cmd)
	if err != nil {
		closer.Close()
		return ports.Stores{}, nil, err
	}
	stores.Configs = middleware.Chain(stores.Configs, middlewares...)

	return stores, closer, nil
}

// configMiddlewares assembles the configuration-store middleware stack
// from the persistent flags. Masking runs before encryption so the masked
// document is what gets sealed.
func configMiddlewares(cmd *cobra.Command) ([]middleware.Middleware, error) {
	var middlewares []middleware.Middleware

	if patterns, _ := cmd.Flags().GetStringSlice("mask-attributes"); len(patterns) > 0 {
		middlewares = append(middlewares, middleware.NewMaskingMiddleware(patterns))
	}

	if encoded, _ := cmd.Flags().GetString("config-encryption-key"); encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding config encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("config encryption key must be 32 bytes, got %d", len(key))
		}
		middlewares = append(middlewares, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
		}))
	}

	return middlewares, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
