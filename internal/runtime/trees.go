package runtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/thicket/internal/dto"
	"github.com/aretw0/thicket/pkg/domain"
)

// CreateProject stores a new project and returns it with an assigned ID.
func (e *Engine) CreateProject(ctx context.Context, tenant, title, description string) (*domain.Project, error) {
	project := &domain.Project{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      description,
		RelatedTreeIDs:   []string{},
		RelatedConfigIDs: []string{},
	}
	if err := e.stores.Trees.SaveProject(ctx, tenant, project); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects in the tenant.
func (e *Engine) ListProjects(ctx context.Context, tenant string) ([]domain.Project, error) {
	return e.stores.Trees.ListProjects(ctx, tenant)
}

// Project returns one project.
func (e *Engine) Project(ctx context.Context, tenant, projectID string) (*domain.Project, error) {
	return e.stores.Trees.Project(ctx, tenant, projectID)
}

// CreateTree stores a new empty tree (no root yet) and links it to the
// project.
func (e *Engine) CreateTree(ctx context.Context, tenant, projectID, title string) (*domain.Tree, error) {
	project, err := e.stores.Trees.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}

	tree := &domain.Tree{
		ID:    uuid.NewString(),
		Title: title,
		Nodes: []domain.Node{},
	}
	if err := e.stores.Trees.SaveTree(ctx, tenant, tree.ID, dto.EncodeTree(tree)); err != nil {
		return nil, fmt.Errorf("saving tree: %w", err)
	}

	project.RelatedTreeIDs = append(project.RelatedTreeIDs, tree.ID)
	if err := e.stores.Trees.SaveProject(ctx, tenant, project); err != nil {
		return nil, fmt.Errorf("linking tree to project: %w", err)
	}
	return tree, nil
}

// UpdateTree replaces a tree's content, recording the written payload in
// the history ledger first so the write can be undone.
func (e *Engine) UpdateTree(ctx context.Context, tenant, projectID string, tree *domain.Tree) (*domain.ComputedTree, error) {
	if _, err := e.stores.Trees.Project(ctx, tenant, projectID); err != nil {
		return nil, err
	}
	if _, err := e.stores.Trees.Tree(ctx, tenant, tree.ID); err != nil {
		return nil, err
	}

	doc := dto.EncodeTree(tree)
	if err := e.Record(ctx, tenant, tree.ID, doc); err != nil {
		// An unrecorded write would be un-undoable; fail the write instead.
		return nil, err
	}
	if err := e.stores.Trees.SaveTree(ctx, tenant, tree.ID, doc); err != nil {
		return nil, fmt.Errorf("saving tree %s: %w", tree.ID, err)
	}

	return e.Materialize(ctx, tenant, projectID, tree.ID)
}

// UndoTree moves a tree one step back in its history: the latest ledger
// entry is dropped, the previous snapshot becomes the live tree state, and
// the restored tree is returned computed.
func (e *Engine) UndoTree(ctx context.Context, tenant, projectID, treeID string) (*domain.ComputedTree, error) {
	payload, err := e.Undo(ctx, tenant, treeID)
	if err != nil {
		return nil, err
	}
	if err := e.stores.Trees.SaveTree(ctx, tenant, treeID, payload); err != nil {
		return nil, fmt.Errorf("restoring tree %s: %w", treeID, err)
	}
	return e.Materialize(ctx, tenant, projectID, treeID)
}

// DeleteTree removes a tree.
func (e *Engine) DeleteTree(ctx context.Context, tenant, treeID string) error {
	return e.stores.Trees.DeleteTree(ctx, tenant, treeID)
}

// ListTrees returns id/title pairs for all trees a project owns, skipping
// identifiers that no longer resolve.
func (e *Engine) ListTrees(ctx context.Context, tenant, projectID string) ([]domain.DagItem, error) {
	project, err := e.stores.Trees.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.DagItem, 0, len(project.RelatedTreeIDs))
	for _, treeID := range project.RelatedTreeIDs {
		doc, err := e.stores.Trees.Tree(ctx, tenant, treeID)
		if err != nil {
			e.logger.Warn("project references missing tree", "project", projectID, "tree", treeID, "err", err)
			continue
		}
		decoded, err := dto.DecodeTree(treeID, doc)
		if err != nil {
			e.logger.Warn("tree failed to decode", "tree", treeID, "err", err)
			continue
		}
		items = append(items, domain.DagItem{ID: treeID, Title: decoded.Title})
	}
	return items, nil
}

// FindTreeOwningNode resolves which tree owns a node.
func (e *Engine) FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error) {
	return e.stores.Trees.FindTreeOwningNode(ctx, tenant, nodeID)
}

// CreateConfiguration stores a configuration and links it to the project.
func (e *Engine) CreateConfiguration(ctx context.Context, tenant, projectID string, cfg *domain.Configuration) (*domain.Configuration, error) {
	project, err := e.stores.Trees.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if err := e.stores.Configs.PutConfiguration(ctx, tenant, cfg); err != nil {
		return nil, fmt.Errorf("saving configuration: %w", err)
	}

	project.RelatedConfigIDs = append(project.RelatedConfigIDs, cfg.ID)
	if err := e.stores.Trees.SaveProject(ctx, tenant, project); err != nil {
		return nil, fmt.Errorf("linking configuration to project: %w", err)
	}
	return cfg, nil
}

// UpdateConfiguration replaces a configuration's content.
func (e *Engine) UpdateConfiguration(ctx context.Context, tenant, configID string, cfg *domain.Configuration) error {
	if _, err := e.stores.Configs.Configuration(ctx, tenant, configID); err != nil {
		return err
	}
	cfg.ID = configID
	return e.stores.Configs.PutConfiguration(ctx, tenant, cfg)
}

// Configuration returns one configuration.
func (e *Engine) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	return e.stores.Configs.Configuration(ctx, tenant, configID)
}

// ListConfigurations returns the IDs of a project's configurations.
func (e *Engine) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	return e.stores.Configs.ListConfigurations(ctx, tenant, projectID)
}

// SelectedConfiguration resolves the configuration selected for a project.
func (e *Engine) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	return e.stores.Configs.SelectedConfiguration(ctx, tenant, projectID)
}

// SelectConfiguration points a project at one of its configurations and
// returns the newly selected configuration.
func (e *Engine) SelectConfiguration(ctx context.Context, tenant, projectID, configID string) (*domain.Configuration, error) {
	project, err := e.stores.Trees.Project(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := e.stores.Configs.Configuration(ctx, tenant, configID); err != nil {
		return nil, err
	}

	project.SelectedConfigID = configID
	if err := e.stores.Trees.SaveProject(ctx, tenant, project); err != nil {
		return nil, fmt.Errorf("updating selected configuration: %w", err)
	}
	return e.stores.Configs.SelectedConfiguration(ctx, tenant, projectID)
}
