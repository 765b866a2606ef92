package badger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/pkg/adapters/badger"
	"github.com/aretw0/thicket/pkg/ports"
)

func newTestStore(t *testing.T) *badger.Store {
	t.Helper()

	store, err := badger.Open(badger.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestBadgerStore_TreeContract(t *testing.T) {
	ports.RunTreeStoreContract(t, newTestStore(t))
}

func TestBadgerStore_ConfigContract(t *testing.T) {
	store := newTestStore(t)
	ports.RunConfigStoreContract(t, store, store)
}

func TestBadgerStore_HistoryContract(t *testing.T) {
	ports.RunHistoryStoreContract(t, newTestStore(t))
}
