package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/domain"
)

// RunTreeStoreContract verifies that a TreeStore implementation adheres to
// the interface contract. Adapter tests call this with a fresh store.
func RunTreeStoreContract(t *testing.T, store TreeStore) {
	ctx := context.Background()
	tenant := "contract-tenant"

	t.Run("Save and Get", func(t *testing.T) {
		doc := domain.RawDocument{
			"title":      "Steal credentials",
			"rootNodeId": "n1",
			"nodes": []any{
				map[string]any{"id": "n1", "title": "Root", "description": ""},
			},
		}
		require.NoError(t, store.SaveTree(ctx, tenant, "tree-1", doc))

		loaded, err := store.Tree(ctx, tenant, "tree-1")
		require.NoError(t, err)
		assert.Equal(t, "Steal credentials", loaded["title"])
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Tree(ctx, tenant, "missing")
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})

	t.Run("Tenant Isolation", func(t *testing.T) {
		_, err := store.Tree(ctx, "other-tenant", "tree-1")
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})

	t.Run("FindTreeOwningNode", func(t *testing.T) {
		owner, err := store.FindTreeOwningNode(ctx, tenant, "n1")
		require.NoError(t, err)
		assert.Equal(t, "tree-1", owner)

		_, err = store.FindTreeOwningNode(ctx, tenant, "unknown-node")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveTree(ctx, tenant, "tree-gone", domain.RawDocument{"title": "t"}))
		require.NoError(t, store.DeleteTree(ctx, tenant, "tree-gone"))
		_, err := store.Tree(ctx, tenant, "tree-gone")
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})

	t.Run("Projects", func(t *testing.T) {
		_, err := store.Project(ctx, tenant, "missing")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		project := &domain.Project{ID: "p1", Title: "Fleet", RelatedTreeIDs: []string{"tree-1"}}
		require.NoError(t, store.SaveProject(ctx, tenant, project))

		loaded, err := store.Project(ctx, tenant, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Fleet", loaded.Title)
		assert.Equal(t, []string{"tree-1"}, loaded.RelatedTreeIDs)

		all, err := store.ListProjects(ctx, tenant)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

// RunConfigStoreContract verifies a ConfigStore implementation. The store
// must share project records with the given TreeStore so selection can be
// resolved.
func RunConfigStoreContract(t *testing.T, store ConfigStore, trees TreeStore) {
	ctx := context.Background()
	tenant := "contract-tenant"

	t.Run("Put and Get", func(t *testing.T) {
		cfg := &domain.Configuration{
			ID:         "cfg-1",
			Name:       "staging",
			Attributes: map[string]any{"hello": "world"},
		}
		require.NoError(t, store.PutConfiguration(ctx, tenant, cfg))

		loaded, err := store.Configuration(ctx, tenant, "cfg-1")
		require.NoError(t, err)
		assert.Equal(t, "staging", loaded.Name)
		assert.Equal(t, "world", loaded.Attributes["hello"])
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Configuration(ctx, tenant, "missing")
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("Selection", func(t *testing.T) {
		project := &domain.Project{ID: "p-cfg", Title: "Config project"}
		require.NoError(t, trees.SaveProject(ctx, tenant, project))

		// No selection yet.
		_, err := store.SelectedConfiguration(ctx, tenant, "p-cfg")
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)

		project.SelectedConfigID = "cfg-1"
		project.RelatedConfigIDs = []string{"cfg-1"}
		require.NoError(t, trees.SaveProject(ctx, tenant, project))

		selected, err := store.SelectedConfiguration(ctx, tenant, "p-cfg")
		require.NoError(t, err)
		assert.Equal(t, "cfg-1", selected.ID)

		ids, err := store.ListConfigurations(ctx, tenant, "p-cfg")
		require.NoError(t, err)
		assert.Equal(t, []string{"cfg-1"}, ids)
	})
}

// RunHistoryStoreContract verifies a HistoryStore implementation.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	tenant := "contract-tenant"
	entity := "tree-hist"

	t.Run("Append and List", func(t *testing.T) {
		require.NoError(t, store.AppendHistory(ctx, tenant, entity, 1, domain.RawDocument{"title": "v1"}))
		require.NoError(t, store.AppendHistory(ctx, tenant, entity, 2, domain.RawDocument{"title": "v2"}))

		entries, err := store.ListHistory(ctx, tenant, entity)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		versions := map[int]string{}
		for _, e := range entries {
			versions[e.Version] = e.Payload["title"].(string)
		}
		assert.Equal(t, "v1", versions[1])
		assert.Equal(t, "v2", versions[2])
	})

	t.Run("List Empty", func(t *testing.T) {
		entries, err := store.ListHistory(ctx, tenant, "never-written")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Delete Entry", func(t *testing.T) {
		require.NoError(t, store.DeleteHistoryEntry(ctx, tenant, entity, 2))

		entries, err := store.ListHistory(ctx, tenant, entity)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].Version)
	})
}
