package runtime_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket/internal/metrics"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

// Instrumentation is optional: an engine built without WithMetrics must run
// every instrumented path without panicking.
func TestEngineWithoutMetrics(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	seedProject(t, store, "p1", map[string]any{"hello": "world"})
	saveTree(t, store, &domain.Tree{
		ID:         "tree-1",
		Title:      "Gated",
		RootNodeID: "n1",
		Nodes:      []domain.Node{{ID: "n1", Condition: `config["hello"] == "world"`}},
	})

	assert.NotPanics(t, func() {
		_, err := engine.Materialize(ctx, tenant, "p1", "tree-1")
		require.NoError(t, err)

		engine.ResolveDown(ctx, tenant, "p1", "tree-1")

		require.NoError(t, engine.Record(ctx, tenant, "tree-1", domain.RawDocument{"title": "v1"}))
	})
}

func TestMaterialize_CountsEvaluationsAndFailures(t *testing.T) {
	store := memory.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	engine := runtime.NewEngine(
		ports.Stores{Trees: store, Configs: store, History: store},
		runtime.WithMetrics(m),
	)
	seedProject(t, store, "p1", map[string]any{"hello": "world"})
	saveTree(t, store, &domain.Tree{
		ID:         "tree-1",
		Title:      "Mixed",
		RootNodeID: "n1",
		Nodes: []domain.Node{
			{ID: "n1", Condition: `config["hello"] == "world"`},
			{ID: "n2", Condition: `config["hello" ==`},
			{ID: "n3"},
		},
	})

	_, err := engine.Materialize(context.Background(), tenant, "p1", "tree-1")
	require.NoError(t, err)

	// The unconditioned node is not an evaluation; the malformed condition
	// is both an evaluation and a failure.
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConditionsEvaluated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConditionsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreesMaterialized))
}

// The root wrap reuses the nodes already computed for the start tree, so
// each tree in the graph is materialized exactly once per Dag call.
func TestDag_MaterializesEachTreeOnce(t *testing.T) {
	store := memory.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	engine := runtime.NewEngine(
		ports.Stores{Trees: store, Configs: store, History: store},
		runtime.WithMetrics(m),
	)
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

	root, err := engine.Dag(context.Background(), tenant, "p1", "tree-a")
	require.NoError(t, err)
	assert.Equal(t, "tree-a", root.ID)
	assert.Equal(t, "Parent", root.Title)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "tree-b", root.Children[0].ID)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TreesMaterialized))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DagTreesVisited))
}
