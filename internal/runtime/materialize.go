package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/thicket/internal/dto"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/eval"
)

// Materialize loads a tree and resolves every node's condition against the
// project's selected configuration.
//
// Nodes without a condition resolve to true without touching the
// configuration store. When a node has a condition but the configuration
// lookup fails, that node resolves to false and materialization continues:
// one bad node never blocks rendering the rest of the tree. Only the tree
// itself being absent is a hard error.
func (e *Engine) Materialize(ctx context.Context, tenant, projectID, treeID string) (*domain.ComputedTree, error) {
	doc, err := e.stores.Trees.Tree(ctx, tenant, treeID)
	if err != nil {
		return nil, err
	}

	tree, err := dto.DecodeTree(treeID, doc)
	if err != nil {
		return nil, fmt.Errorf("materializing tree %s: %w", treeID, err)
	}

	computed := &domain.ComputedTree{
		ID:         tree.ID,
		Title:      tree.Title,
		RootNodeID: tree.RootNodeID,
		Nodes:      make([]domain.ComputedNode, 0, len(tree.Nodes)),
	}

	// The selected configuration is fetched at most once, and only when
	// some node actually carries a condition.
	var (
		cfg       *domain.Configuration
		cfgErr    error
		cfgLoaded bool
	)

	for _, node := range tree.Nodes {
		resolved := true
		if node.Condition != "" {
			failed := false
			if !cfgLoaded {
				cfg, cfgErr = e.stores.Configs.SelectedConfiguration(ctx, tenant, projectID)
				cfgLoaded = true
			}
			if cfgErr != nil {
				e.logger.Warn("configuration lookup failed, condition resolves to false",
					"tree", treeID, "node", node.ID, "project", projectID, "err", cfgErr)
				resolved, failed = false, true
			} else {
				resolved, failed = eval.Resolve(node.Condition, *cfg)
			}
			e.metrics.CountEvaluation(failed)
		}

		computed.Nodes = append(computed.Nodes, domain.ComputedNode{
			Node:              node,
			ConditionResolved: resolved,
		})
	}

	e.metrics.CountMaterialization()
	return computed, nil
}

// Nodes returns the computed nodes of a tree, or an empty list when the
// tree cannot be materialized. The DAG resolver uses this so a broken
// branch contributes nothing instead of failing the traversal.
func (e *Engine) Nodes(ctx context.Context, tenant, projectID, treeID string) []domain.ComputedNode {
	computed, err := e.Materialize(ctx, tenant, projectID, treeID)
	if err != nil {
		e.logger.Warn("could not materialize tree", "tree", treeID, "err", err)
		return nil
	}
	return computed.Nodes
}
