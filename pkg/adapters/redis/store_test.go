package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/adapters/redis"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

func newTestStore(t *testing.T) *redis.Store {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client)
}

func TestRedisStore_TreeContract(t *testing.T) {
	ports.RunTreeStoreContract(t, newTestStore(t))
}

func TestRedisStore_ConfigContract(t *testing.T) {
	store := newTestStore(t)
	ports.RunConfigStoreContract(t, store, store)
}

func TestRedisStore_HistoryContract(t *testing.T) {
	ports.RunHistoryStoreContract(t, newTestStore(t))
}

// Rewriting a tree must atomically re-point the node ownership index, or
// the DAG resolver would chase stale cross-tree references.
func TestRedisStore_NodeIndexFollowsRewrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := domain.RawDocument{
		"title": "v1",
		"nodes": []any{map[string]any{"id": "n1"}, map[string]any{"id": "n2"}},
	}
	require.NoError(t, store.SaveTree(ctx, "t", "tree-1", doc))

	owner, err := store.FindTreeOwningNode(ctx, "t", "n2")
	require.NoError(t, err)
	assert.Equal(t, "tree-1", owner)

	// Rewrite without n2.
	doc["nodes"] = []any{map[string]any{"id": "n1"}}
	require.NoError(t, store.SaveTree(ctx, "t", "tree-1", doc))

	_, err = store.FindTreeOwningNode(ctx, "t", "n2")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	owner, err = store.FindTreeOwningNode(ctx, "t", "n1")
	require.NoError(t, err)
	assert.Equal(t, "tree-1", owner)
}
