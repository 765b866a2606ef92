// Package badger implements the store ports on BadgerDB, an embedded
// key-value store. It gives a single-binary deployment durable storage
// without running a separate database.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/aretw0/thicket/pkg/domain"
)

// Config holds configuration for the Badger-backed store.
type Config struct {
	// Path is the directory for the database files. Ignored when InMemory
	// is set.
	Path string

	// InMemory disables disk persistence. Useful for tests.
	InMemory bool

	// SyncWrites makes every write hit disk before returning.
	SyncWrites bool

	// Logger receives Badger's internal log lines. Nil disables them.
	Logger *slog.Logger
}

// Store implements ports.TreeStore, ports.ConfigStore and ports.HistoryStore.
type Store struct {
	db *badgerdb.DB
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	opts := badgerdb.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", cfg.Path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func treeKey(tenant, treeID string) []byte {
	return []byte("tree:" + tenant + ":" + treeID)
}

func nodeKey(tenant, nodeID string) []byte {
	return []byte("node:" + tenant + ":" + nodeID)
}

func treeNodesKey(tenant, treeID string) []byte {
	return []byte("treenodes:" + tenant + ":" + treeID)
}

func projectKey(tenant, projectID string) []byte {
	return []byte("project:" + tenant + ":" + projectID)
}

func projectPrefix(tenant string) []byte {
	return []byte("project:" + tenant + ":")
}

func configKey(tenant, configID string) []byte {
	return []byte("config:" + tenant + ":" + configID)
}

func historyKey(tenant, entityID string, version int) []byte {
	// Zero-padded so versions iterate in order under the prefix.
	return []byte(fmt.Sprintf("history:%s:%s:%010d", tenant, entityID, version))
}

func historyPrefix(tenant, entityID string) []byte {
	return []byte("history:" + tenant + ":" + entityID + ":")
}

func getJSON(txn *badgerdb.Txn, key []byte, out any, notFound error) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return notFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badgerdb.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func (s *Store) Tree(ctx context.Context, tenant, treeID string) (domain.RawDocument, error) {
	var doc domain.RawDocument
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, treeKey(tenant, treeID), &doc, domain.ErrTreeNotFound)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) SaveTree(ctx context.Context, tenant, treeID string, doc domain.RawDocument) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		// Drop the previous node ownership entries before indexing the
		// incoming document.
		var oldNodes []string
		if err := getJSON(txn, treeNodesKey(tenant, treeID), &oldNodes, nil); err != nil {
			return err
		}
		for _, nodeID := range oldNodes {
			if err := txn.Delete(nodeKey(tenant, nodeID)); err != nil {
				return err
			}
		}

		ids := nodeIDs(doc)
		for _, nodeID := range ids {
			if err := txn.Set(nodeKey(tenant, nodeID), []byte(treeID)); err != nil {
				return err
			}
		}
		if err := setJSON(txn, treeNodesKey(tenant, treeID), ids); err != nil {
			return err
		}
		return setJSON(txn, treeKey(tenant, treeID), doc)
	})
}

func (s *Store) DeleteTree(ctx context.Context, tenant, treeID string) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		var oldNodes []string
		if err := getJSON(txn, treeNodesKey(tenant, treeID), &oldNodes, nil); err != nil {
			return err
		}
		for _, nodeID := range oldNodes {
			if err := txn.Delete(nodeKey(tenant, nodeID)); err != nil {
				return err
			}
		}
		if err := txn.Delete(treeNodesKey(tenant, treeID)); err != nil {
			return err
		}
		return txn.Delete(treeKey(tenant, treeID))
	})
}

func (s *Store) FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error) {
	var treeID string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(nodeKey(tenant, nodeID))
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return domain.ErrNodeNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			treeID = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return treeID, nil
}

func (s *Store) Project(ctx context.Context, tenant, projectID string) (*domain.Project, error) {
	var project domain.Project
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, projectKey(tenant, projectID), &project, domain.ErrProjectNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) SaveProject(ctx context.Context, tenant string, project *domain.Project) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return setJSON(txn, projectKey(tenant, project.ID), project)
	})
}

func (s *Store) ListProjects(ctx context.Context, tenant string) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := projectPrefix(tenant)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var project domain.Project
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &project)
			})
			if err != nil {
				return err
			}
			projects = append(projects, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	project, err := s.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	if project.SelectedConfigID == "" {
		return nil, domain.ErrConfigNotFound
	}
	return s.Configuration(ctx, tenant, project.SelectedConfigID)
}

func (s *Store) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	var cfg domain.Configuration
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, configKey(tenant, configID), &cfg, domain.ErrConfigNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return setJSON(txn, configKey(tenant, cfg.ID), cfg)
	})
}

func (s *Store) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	project, err := s.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	return project.RelatedConfigIDs, nil
}

func (s *Store) AppendHistory(ctx context.Context, tenant, entityID string, version int, payload domain.RawDocument) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return setJSON(txn, historyKey(tenant, entityID, version), payload)
	})
}

func (s *Store) ListHistory(ctx context.Context, tenant, entityID string) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := historyPrefix(tenant, entityID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			version, err := strconv.Atoi(string(key[len(prefix):]))
			if err != nil {
				continue
			}

			var payload domain.RawDocument
			err = it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &payload)
			})
			if err != nil {
				return err
			}
			entries = append(entries, domain.HistoryEntry{
				EntityID: entityID,
				Version:  version,
				Payload:  payload,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, tenant, entityID string, version int) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(historyKey(tenant, entityID, version))
	})
}

func nodeIDs(doc domain.RawDocument) []string {
	nodes, _ := doc["nodes"].([]any)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		node, _ := n.(map[string]any)
		if id, ok := node["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
