package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/antigravity-ventures/thaiturk/internal/common"
	"github.com/antigravity-ventures/thaiturk/internal/config"
	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/handler"
	"github.com/antigravity-ventures/thaiturk/internal/lexicon"
	"github.com/antigravity-ventures/thaiturk/internal/service"
	"github.com/antigravity-ventures/thaiturk/internal/storage"
)

// initStorage initializes the storage backend selected by config. The
// memory backend holds nothing across runs; it exists for dry runs and
// demos on machines without a writable data directory.
func initStorage(ctx context.Context) (service.Storage, error) {
	if backend := viper.GetString("storage.backend"); backend == "memory" {
		return storage.NewMemoryStorage(), nil
	} else if backend != "" && backend != "sqlite" {
		return nil, fmt.Errorf("unknown storage backend %q (expected sqlite or memory)", backend)
	}

	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/thaiturk/thaiturk.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initLexicon loads the keyword lexicon, preferring a configured override
// file over the embedded defaults.
func initLexicon() (*lexicon.Lexicon, error) {
	if path := viper.GetString("lexicon.path"); path != "" {
		return lexicon.Load(config.ExpandPath(path))
	}
	return lexicon.Default()
}

// initDispatcher wires the full routing pipeline on top of the given storage.
func initDispatcher(store service.Storage) (*engine.Dispatcher, *lexicon.Lexicon, error) {
	lex, err := initLexicon()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lexicon: %w", err)
	}

	classifier, err := engine.NewClassifier(lex)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	handlers := []engine.Handler{
		handler.NewMedical(store, lex),
		handler.NewTravel(store),
		handler.NewMarketing(lex),
		handler.NewFactory(),
	}

	dispatcher, err := engine.NewDispatcher(classifier, handlers, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build dispatcher: %w", err)
	}
	return dispatcher, lex, nil
}

// closeStorage logs close failures. Commands defer it after initStorage.
func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", nil)
	}
}

// parseMeta turns repeated key=value flags into a metadata map.
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}
