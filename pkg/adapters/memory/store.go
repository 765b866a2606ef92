// Package memory provides an in-memory implementation of the store ports.
// It is the default when no external storage is configured and the
// workhorse of the test suites. Safe for concurrent use.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/thicket/pkg/domain"
)

// Store implements ports.TreeStore, ports.ConfigStore and
// ports.HistoryStore over mutex-guarded maps keyed by tenant.
type Store struct {
	mu       sync.RWMutex
	trees    map[string]map[string]domain.RawDocument
	projects map[string]map[string]*domain.Project
	configs  map[string]map[string]*domain.Configuration
	history  map[string]map[string][]domain.HistoryEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		trees:    make(map[string]map[string]domain.RawDocument),
		projects: make(map[string]map[string]*domain.Project),
		configs:  make(map[string]map[string]*domain.Configuration),
		history:  make(map[string]map[string][]domain.HistoryEntry),
	}
}

// deepCopy isolates stored documents from caller mutation, the same way a
// real persistence round-trip would.
func deepCopy(doc domain.RawDocument) domain.RawDocument {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		// RawDocuments come from JSON in the first place; this cannot
		// happen for well-formed input.
		panic(fmt.Sprintf("unmarshalable document: %v", err))
	}
	var out domain.RawDocument
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("uncopyable document: %v", err))
	}
	return out
}

func (s *Store) Tree(ctx context.Context, tenant, treeID string) (domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.trees[tenant][treeID]
	if !ok {
		return nil, domain.ErrTreeNotFound
	}
	return deepCopy(doc), nil
}

func (s *Store) SaveTree(ctx context.Context, tenant, treeID string, doc domain.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trees[tenant] == nil {
		s.trees[tenant] = make(map[string]domain.RawDocument)
	}
	s.trees[tenant][treeID] = deepCopy(doc)
	return nil
}

func (s *Store) DeleteTree(ctx context.Context, tenant, treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trees[tenant], treeID)
	return nil
}

func (s *Store) FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for treeID, doc := range s.trees[tenant] {
		nodes, _ := doc["nodes"].([]any)
		for _, n := range nodes {
			node, _ := n.(map[string]any)
			if node["id"] == nodeID {
				return treeID, nil
			}
		}
	}
	return "", domain.ErrNodeNotFound
}

func (s *Store) Project(ctx context.Context, tenant, projectID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[tenant][projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	copied := *project
	copied.RelatedTreeIDs = append([]string{}, project.RelatedTreeIDs...)
	copied.RelatedConfigIDs = append([]string{}, project.RelatedConfigIDs...)
	return &copied, nil
}

func (s *Store) SaveProject(ctx context.Context, tenant string, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects[tenant] == nil {
		s.projects[tenant] = make(map[string]*domain.Project)
	}
	copied := *project
	copied.RelatedTreeIDs = append([]string{}, project.RelatedTreeIDs...)
	copied.RelatedConfigIDs = append([]string{}, project.RelatedConfigIDs...)
	s.projects[tenant][project.ID] = &copied
	return nil
}

func (s *Store) ListProjects(ctx context.Context, tenant string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]domain.Project, 0, len(s.projects[tenant]))
	for _, p := range s.projects[tenant] {
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *Store) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[tenant][projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if project.SelectedConfigID == "" {
		return nil, domain.ErrConfigNotFound
	}
	cfg, ok := s.configs[tenant][project.SelectedConfigID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return copyConfig(cfg), nil
}

func (s *Store) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[tenant][configID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return copyConfig(cfg), nil
}

func (s *Store) PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.configs[tenant] == nil {
		s.configs[tenant] = make(map[string]*domain.Configuration)
	}
	s.configs[tenant][cfg.ID] = copyConfig(cfg)
	return nil
}

func (s *Store) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[tenant][projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return append([]string{}, project.RelatedConfigIDs...), nil
}

func (s *Store) AppendHistory(ctx context.Context, tenant, entityID string, version int, payload domain.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history[tenant] == nil {
		s.history[tenant] = make(map[string][]domain.HistoryEntry)
	}
	s.history[tenant][entityID] = append(s.history[tenant][entityID], domain.HistoryEntry{
		EntityID: entityID,
		Version:  version,
		Payload:  deepCopy(payload),
	})
	return nil
}

func (s *Store) ListHistory(ctx context.Context, tenant, entityID string) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[tenant][entityID]
	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		e.Payload = deepCopy(e.Payload)
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, tenant, entityID string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[tenant][entityID]
	kept := entries[:0]
	for _, e := range entries {
		if e.Version != version {
			kept = append(kept, e)
		}
	}
	s.history[tenant][entityID] = kept
	return nil
}

func copyConfig(cfg *domain.Configuration) *domain.Configuration {
	copied := *cfg
	copied.Attributes = deepCopy(cfg.Attributes)
	return &copied
}
