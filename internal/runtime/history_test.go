package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/domain"
)

func TestRecord_VersionsIncreaseFromOne(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v"}))
	}

	entries, err := engine.History(ctx, tenant, "tree-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	seen := map[int]bool{}
	for _, e := range entries {
		seen[e.Version] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)
}

func TestUndo_NothingToUndoWithZeroOrOneEntries(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Undo(ctx, tenant, "tree-1")
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)

	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v1"}))
	_, err = engine.Undo(ctx, tenant, "tree-1")
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestUndo_ReturnsPreviousAndDropsLatest(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v1"}))
	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v2"}))

	payload, err := engine.Undo(ctx, tenant, "tree-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", payload["title"])

	entries, err := engine.History(ctx, tenant, "tree-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Version)
}

func TestUndo_VersionsNeverReused(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v1"}))
	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v2"}))

	_, err := engine.Undo(ctx, tenant, "tree-1")
	require.NoError(t, err)

	// The next write continues from the surviving max, not the deleted one.
	require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v2b"}))
	entries, err := engine.History(ctx, tenant, "tree-1")
	require.NoError(t, err)

	versions := map[int]string{}
	for _, e := range entries {
		versions[e.Version] = e.Payload["title"].(string)
	}
	assert.Equal(t, map[int]string{1: "v1", 2: "v2b"}, versions)
}

func TestUpdateTree_RecordsHistoryAndUndoRestores(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	seedProject(t, store, "p1", map[string]any{})
	tree, err := engine.CreateTree(ctx, tenant, "p1", "Original")
	require.NoError(t, err)

	v1 := &domain.Tree{ID: tree.ID, Title: "First", RootNodeID: "n1",
		Nodes: []domain.Node{{ID: "n1", Title: "one"}}}
	_, err = engine.UpdateTree(ctx, tenant, "p1", v1)
	require.NoError(t, err)

	v2 := &domain.Tree{ID: tree.ID, Title: "Second", RootNodeID: "n1",
		Nodes: []domain.Node{{ID: "n1", Title: "two"}}}
	_, err = engine.UpdateTree(ctx, tenant, "p1", v2)
	require.NoError(t, err)

	restored, err := engine.UndoTree(ctx, tenant, "p1", tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", restored.Title)

	// The live document now matches the restored snapshot.
	live, err := engine.Materialize(ctx, tenant, "p1", tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", live.Title)
}

func TestUndoTree_NothingToUndoAfterSingleWrite(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	seedProject(t, store, "p1", map[string]any{})
	tree, err := engine.CreateTree(ctx, tenant, "p1", "Only")
	require.NoError(t, err)

	v1 := &domain.Tree{ID: tree.ID, Title: "First"}
	_, err = engine.UpdateTree(ctx, tenant, "p1", v1)
	require.NoError(t, err)

	_, err = engine.UndoTree(ctx, tenant, "p1", tree.ID)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}
