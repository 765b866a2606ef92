package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/domain"
)

func TestResolveDown_NoExternalChildren(t *testing.T) {
	engine, store := newTestEngine(t)
	saveTree(t, store, &domain.Tree{
		ID:         "tree-a",
		Title:      "Self contained",
		RootNodeID: "a1",
		Nodes: []domain.Node{
			{ID: "a1", Children: []string{"a2"}},
			{ID: "a2"},
		},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	assert.Empty(t, items)
}

func TestResolveDown_FollowsExternalReference(t *testing.T) {
	engine, store := newTestEngine(t)
	saveTree(t, store, &domain.Tree{
		ID:         "tree-a",
		Title:      "Parent",
		RootNodeID: "a1",
		Nodes:      []domain.Node{{ID: "a1", Children: []string{"b1"}}},
	})
	saveTree(t, store, &domain.Tree{
		ID:         "tree-b",
		Title:      "Child",
		RootNodeID: "b1",
		Nodes:      []domain.Node{{ID: "b1"}},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	require.Len(t, items, 1)
	assert.Equal(t, "tree-b", items[0].ID)
	assert.Equal(t, "Child", items[0].Title)
	assert.Empty(t, items[0].Children)
}

func TestResolveDown_CycleTerminates(t *testing.T) {
	engine, store := newTestEngine(t)
	// A references a node owned by B; B references a node owned by A.
	saveTree(t, store, &domain.Tree{
		ID:         "tree-a",
		Title:      "A",
		RootNodeID: "a1",
		Nodes:      []domain.Node{{ID: "a1", Children: []string{"b1"}}},
	})
	saveTree(t, store, &domain.Tree{
		ID:         "tree-b",
		Title:      "B",
		RootNodeID: "b1",
		Nodes:      []domain.Node{{ID: "b1", Children: []string{"a1"}}},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	require.Len(t, items, 1)
	assert.Equal(t, "tree-b", items[0].ID)
	// B's walk sees A in its path and stops there.
	assert.Empty(t, items[0].Children)
}

func TestResolveDown_MissingOwnerSkipped(t *testing.T) {
	engine, store := newTestEngine(t)
	saveTree(t, store, &domain.Tree{
		ID:         "tree-a",
		Title:      "Dangling",
		RootNodeID: "a1",
		Nodes:      []domain.Node{{ID: "a1", Children: []string{"ghost"}}},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	assert.Empty(t, items)
}

func TestResolveDown_DistinctOwnersInDiscoveryOrder(t *testing.T) {
	engine, store := newTestEngine(t)
	saveTree(t, store, &domain.Tree{
		ID:         "tree-a",
		Title:      "Fan out",
		RootNodeID: "a1",
		Nodes: []domain.Node{
			// Two references into tree-b, one into tree-c. tree-b must
			// appear once, before tree-c.
			{ID: "a1", Children: []string{"b1", "b2", "c1"}},
		},
	})
	saveTree(t, store, &domain.Tree{
		ID:    "tree-b",
		Title: "B",
		Nodes: []domain.Node{{ID: "b1"}, {ID: "b2"}},
	})
	saveTree(t, store, &domain.Tree{
		ID:    "tree-c",
		Title: "C",
		Nodes: []domain.Node{{ID: "c1"}},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	require.Len(t, items, 2)
	assert.Equal(t, "tree-b", items[0].ID)
	assert.Equal(t, "tree-c", items[1].ID)
}

func TestResolveDown_DiamondVisitsSharedTreePerBranch(t *testing.T) {
	engine, store := newTestEngine(t)
	// A fans out to B and C, which both reference D. The seen set is
	// carried per path, so each branch resolves D independently.
	saveTree(t, store, &domain.Tree{
		ID: "tree-a", Title: "A", RootNodeID: "a1",
		Nodes: []domain.Node{{ID: "a1", Children: []string{"b1", "c1"}}},
	})
	saveTree(t, store, &domain.Tree{
		ID: "tree-b", Title: "B",
		Nodes: []domain.Node{{ID: "b1", Children: []string{"d1"}}},
	})
	saveTree(t, store, &domain.Tree{
		ID: "tree-c", Title: "C",
		Nodes: []domain.Node{{ID: "c1", Children: []string{"d1"}}},
	})
	saveTree(t, store, &domain.Tree{
		ID: "tree-d", Title: "D",
		Nodes: []domain.Node{{ID: "d1"}},
	})

	items := engine.ResolveDown(context.Background(), tenant, "p1", "tree-a")
	require.Len(t, items, 2)
	require.Len(t, items[0].Children, 1)
	require.Len(t, items[1].Children, 1)
	assert.Equal(t, "tree-d", items[0].Children[0].ID)
	assert.Equal(t, "tree-d", items[1].Children[0].ID)
}

func TestResolveDown_StartTreeMissingContributesNothing(t *testing.T) {
	engine, _ := newTestEngine(t)
	items := engine.ResolveDown(context.Background(), tenant, "p1", "never-saved")
	assert.Empty(t, items)
}
