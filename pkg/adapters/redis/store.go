// Package redis implements the store ports on Redis. Documents are stored
// as JSON strings; secondary indexes (project listing, node ownership,
// history versions) are kept in sets and hashes so lookups never scan.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/thicket/pkg/domain"
)

// Store implements ports.TreeStore, ports.ConfigStore and ports.HistoryStore.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "thicket:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) treeKey(tenant, treeID string) string {
	return s.prefix + tenant + ":tree:" + treeID
}

func (s *Store) treeNodesKey(tenant, treeID string) string {
	return s.prefix + tenant + ":treenodes:" + treeID
}

func (s *Store) nodeIndexKey(tenant string) string {
	return s.prefix + tenant + ":nodes"
}

func (s *Store) projectKey(tenant, projectID string) string {
	return s.prefix + tenant + ":project:" + projectID
}

func (s *Store) projectIndexKey(tenant string) string {
	return s.prefix + tenant + ":projects"
}

func (s *Store) configKey(tenant, configID string) string {
	return s.prefix + tenant + ":config:" + configID
}

func (s *Store) historyKey(tenant, entityID string) string {
	return s.prefix + tenant + ":history:" + entityID
}

func (s *Store) Tree(ctx context.Context, tenant, treeID string) (domain.RawDocument, error) {
	val, err := s.client.Get(ctx, s.treeKey(tenant, treeID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrTreeNotFound
		}
		return nil, fmt.Errorf("redis get tree: %w", err)
	}

	var doc domain.RawDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal tree %s: %w", treeID, err)
	}
	return doc, nil
}

func (s *Store) SaveTree(ctx context.Context, tenant, treeID string, doc domain.RawDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal tree %s: %w", treeID, err)
	}

	// Re-index node ownership: drop the tree's previous node ids from the
	// tenant-wide index, then register the current ones.
	oldNodes, err := s.client.SMembers(ctx, s.treeNodesKey(tenant, treeID)).Result()
	if err != nil && err != backend.Nil {
		return fmt.Errorf("redis read node index: %w", err)
	}

	pipe := s.client.TxPipeline()
	if len(oldNodes) > 0 {
		pipe.HDel(ctx, s.nodeIndexKey(tenant), oldNodes...)
	}
	pipe.Del(ctx, s.treeNodesKey(tenant, treeID))

	for _, nodeID := range nodeIDs(doc) {
		pipe.HSet(ctx, s.nodeIndexKey(tenant), nodeID, treeID)
		pipe.SAdd(ctx, s.treeNodesKey(tenant, treeID), nodeID)
	}
	pipe.Set(ctx, s.treeKey(tenant, treeID), data, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save tree: %w", err)
	}
	return nil
}

func (s *Store) DeleteTree(ctx context.Context, tenant, treeID string) error {
	oldNodes, err := s.client.SMembers(ctx, s.treeNodesKey(tenant, treeID)).Result()
	if err != nil && err != backend.Nil {
		return fmt.Errorf("redis read node index: %w", err)
	}

	pipe := s.client.TxPipeline()
	if len(oldNodes) > 0 {
		pipe.HDel(ctx, s.nodeIndexKey(tenant), oldNodes...)
	}
	pipe.Del(ctx, s.treeNodesKey(tenant, treeID))
	pipe.Del(ctx, s.treeKey(tenant, treeID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete tree: %w", err)
	}
	return nil
}

func (s *Store) FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error) {
	treeID, err := s.client.HGet(ctx, s.nodeIndexKey(tenant), nodeID).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrNodeNotFound
		}
		return "", fmt.Errorf("redis node lookup: %w", err)
	}
	return treeID, nil
}

func (s *Store) Project(ctx context.Context, tenant, projectID string) (*domain.Project, error) {
	val, err := s.client.Get(ctx, s.projectKey(tenant, projectID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("redis get project: %w", err)
	}

	var project domain.Project
	if err := json.Unmarshal([]byte(val), &project); err != nil {
		return nil, fmt.Errorf("unmarshal project %s: %w", projectID, err)
	}
	return &project, nil
}

func (s *Store) SaveProject(ctx context.Context, tenant string, project *domain.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", project.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.projectKey(tenant, project.ID), data, 0)
	pipe.SAdd(ctx, s.projectIndexKey(tenant), project.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save project: %w", err)
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context, tenant string) ([]domain.Project, error) {
	ids, err := s.client.SMembers(ctx, s.projectIndexKey(tenant)).Result()
	if err != nil && err != backend.Nil {
		return nil, fmt.Errorf("redis list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.Project(ctx, tenant, id)
		if err != nil {
			continue
		}
		projects = append(projects, *project)
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
	val, err := s.client.Get(ctx, s.configKey(tenant, configID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("redis get config: %w", err)
	}

	var cfg domain.Configuration
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", configID, err)
	}
	return &cfg, nil
}

func (s *Store) PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config %s: %w", cfg.ID, err)
	}
	if err := s.client.Set(ctx, s.configKey(tenant, cfg.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis save config: %w", err)
	}
	return nil
}

func (s *Store) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	project, err := s.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	return project.RelatedConfigIDs, nil
}

func (s *Store) AppendHistory(ctx context.Context, tenant, entityID string, version int, payload domain.RawDocument) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal history payload: %w", err)
	}
	field := strconv.Itoa(version)
	if err := s.client.HSet(ctx, s.historyKey(tenant, entityID), field, data).Err(); err != nil {
		return fmt.Errorf("redis append history: %w", err)
	}
	return nil
}

func (s *Store) ListHistory(ctx context.Context, tenant, entityID string) ([]domain.HistoryEntry, error) {
	fields, err := s.client.HGetAll(ctx, s.historyKey(tenant, entityID)).Result()
	if err != nil && err != backend.Nil {
		return nil, fmt.Errorf("redis list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(fields))
	for field, raw := range fields {
		version, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		var payload domain.RawDocument
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		entries = append(entries, domain.HistoryEntry{
			EntityID: entityID,
			Version:  version,
			Payload:  payload,
		})
	}
	return entries, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, tenant, entityID string, version int) error {
	if err := s.client.HDel(ctx, s.historyKey(tenant, entityID), strconv.Itoa(version)).Err(); err != nil {
		return fmt.Errorf("redis delete history entry: %w", err)
	}
	return nil
}

// nodeIDs extracts the node identifiers from a raw tree document.
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
