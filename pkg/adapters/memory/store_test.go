package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

func TestMemoryStore_TreeContract(t *testing.T) {
	ports.RunTreeStoreContract(t, memory.NewStore())
}

func TestMemoryStore_ConfigContract(t *testing.T) {
	store := memory.NewStore()
	ports.RunConfigStoreContract(t, store, store)
}

func TestMemoryStore_HistoryContract(t *testing.T) {
	ports.RunHistoryStoreContract(t, memory.NewStore())
}

func TestMemoryStore_CallerCannotMutateStoredTree(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	doc := domain.RawDocument{"title": "original"}
	require.NoError(t, store.SaveTree(ctx, "t", "tree-1", doc))

	doc["title"] = "mutated"
	loaded, err := store.Tree(ctx, "t", "tree-1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded["title"])

	loaded["title"] = "mutated again"
	reloaded, err := store.Tree(ctx, "t", "tree-1")
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded["title"])
}
