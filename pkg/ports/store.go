package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// TreeStore persists trees and projects. Trees are stored as raw documents;
// decoding and defaulting happen in the engine, so a store never has to
// understand tree structure beyond the node index used by
// FindTreeOwningNode.
type TreeStore interface {
	// Tree retrieves the raw document for a tree.
	// Returns domain.ErrTreeNotFound if the tree does not exist.
	Tree(ctx context.Context, tenant, treeID string) (domain.RawDocument, error)

	// SaveTree writes the raw document for a tree, creating or replacing it.
	SaveTree(ctx context.Context, tenant, treeID string, doc domain.RawDocument) error

	// DeleteTree removes a tree.
	DeleteTree(ctx context.Context, tenant, treeID string) error

	// FindTreeOwningNode resolves which tree owns the given node ID.
	// Returns domain.ErrNodeNotFound when no tree in the tenant owns it.
	FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error)

	// Project retrieves a project record.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Project(ctx context.Context, tenant, projectID string) (*domain.Project, error)

	// SaveProject writes a project record, creating or replacing it.
	SaveProject(ctx context.Context, tenant string, project *domain.Project) error

	// ListProjects returns all projects in the tenant.
	ListProjects(ctx context.Context, tenant string) ([]domain.Project, error)
}

// ConfigStore persists configurations and resolves a project's selection.
type ConfigStore interface {
	// SelectedConfiguration resolves the configuration currently selected
	// for a project. Returns domain.ErrConfigNotFound when the project has
	// no selection or the selected configuration is gone.
	SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error)

	// Configuration retrieves a configuration by ID.
	Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error)

	// PutConfiguration writes a configuration, creating or replacing it.
	PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error

	// ListConfigurations returns the IDs of a project's configurations.
	ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error)
}

// HistoryStore persists the append-only version log. Version arithmetic is
// the engine's job; the store only appends, lists and deletes entries.
type HistoryStore interface {
	// AppendHistory writes one immutable entry.
	AppendHistory(ctx context.Context, tenant, entityID string, version int, payload domain.RawDocument) error

	// ListHistory returns all entries for an entity, in no guaranteed order.
	ListHistory(ctx context.Context, tenant, entityID string) ([]domain.HistoryEntry, error)

	// DeleteHistoryEntry removes the entry with the given version.
	DeleteHistoryEntry(ctx context.Context, tenant, entityID string, version int) error
}

// Stores bundles the three collaborator contracts an engine needs.
type Stores struct {
	Trees   TreeStore
	Configs ConfigStore
	History HistoryStore
}
