package runtime

import (
	"context"
	"maps"

	"github.com/aretw0/thicket/internal/dto"
	"github.com/aretw0/thicket/pkg/domain"
)

// ResolveDown builds the cross-tree dependency graph reachable from the
// given tree. The returned items are the trees referenced by nodes of the
// start tree whose children live in other trees, each carrying its own
// children recursively. The caller typically wraps the result in a root
// DagItem for the start tree.
func (e *Engine) ResolveDown(ctx context.Context, tenant, projectID, treeID string) []domain.DagItem {
	return e.resolveDown(ctx, tenant, projectID, treeID, map[string]struct{}{})
}

// Dag wraps the downward dependency graph in a single root item for the
// start tree. The start tree is materialized exactly once: its computed
// nodes feed the first recursion frame directly instead of being fetched
// again inside ResolveDown.
func (e *Engine) Dag(ctx context.Context, tenant, projectID, treeID string) (*domain.DagItem, error) {
	computed, err := e.Materialize(ctx, tenant, projectID, treeID)
	if err != nil {
		return nil, err
	}
	e.metrics.CountDagVisit()
	return &domain.DagItem{
		ID:       treeID,
		Title:    computed.Title,
		Children: e.externalChildren(ctx, tenant, projectID, treeID, computed.Nodes, map[string]struct{}{treeID: {}}),
	}, nil
}

// resolveDown carries the seen set. Each call frame owns its copy: the set
// is cloned before recursing so sibling branches stay independent, and the
// monotonic growth along any one path bounds the recursion by the number
// of distinct trees.
func (e *Engine) resolveDown(ctx context.Context, tenant, projectID, treeID string, seen map[string]struct{}) []domain.DagItem {
	if _, ok := seen[treeID]; ok {
		return []domain.DagItem{}
	}
	seen[treeID] = struct{}{}
	e.metrics.CountDagVisit()

	return e.externalChildren(ctx, tenant, projectID, treeID, e.Nodes(ctx, tenant, projectID, treeID), seen)
}

func (e *Engine) externalChildren(ctx context.Context, tenant, projectID, treeID string, nodes []domain.ComputedNode, seen map[string]struct{}) []domain.DagItem {
	result := []domain.DagItem{}

	// Children referenced by any node but not owned by this tree are the
	// cross-tree edges.
	owned := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		owned[node.ID] = struct{}{}
	}

	var external []string
	externalSeen := map[string]struct{}{}
	for _, node := range nodes {
		for _, child := range node.Children {
			if _, ok := owned[child]; ok {
				continue
			}
			if _, ok := externalSeen[child]; ok {
				continue
			}
			externalSeen[child] = struct{}{}
			external = append(external, child)
		}
	}

	// Resolve owners in discovery order. Ambiguous or missing owners are
	// skipped, not fatal.
	var childTrees []string
	childSeen := map[string]struct{}{}
	for _, nodeID := range external {
		owner, err := e.stores.Trees.FindTreeOwningNode(ctx, tenant, nodeID)
		if err != nil {
			e.logger.Warn("could not resolve owner of external node reference",
				"node", nodeID, "tree", treeID, "err", err)
			continue
		}
		if _, ok := childSeen[owner]; ok {
			continue
		}
		childSeen[owner] = struct{}{}
		childTrees = append(childTrees, owner)
	}

	for _, childTree := range childTrees {
		doc, err := e.stores.Trees.Tree(ctx, tenant, childTree)
		if err != nil {
			e.logger.Warn("referenced tree vanished during resolution", "tree", childTree, "err", err)
			continue
		}
		decoded, err := dto.DecodeTree(childTree, doc)
		if err != nil {
			e.logger.Warn("referenced tree failed to decode", "tree", childTree, "err", err)
			continue
		}

		result = append(result, domain.DagItem{
			ID:       childTree,
			Title:    decoded.Title,
			Children: e.resolveDown(ctx, tenant, projectID, childTree, maps.Clone(seen)),
		})
	}

	return result
}
