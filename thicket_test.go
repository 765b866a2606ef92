package thicket_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
)

func TestFacade_Integration(t *testing.T) {
	engine, err := thicket.New()
	require.NoError(t, err)

	ctx := context.Background()
	const tenant = "default"

	project, err := engine.CreateProject(ctx, tenant, "Demo", "integration")
	require.NoError(t, err)
	require.NotEmpty(t, project.ID)

	cfg, err := engine.CreateConfiguration(ctx, tenant, project.ID, &domain.Configuration{
		Name:       "prod",
		Attributes: map[string]any{"mfa": map[string]any{"enabled": true}},
	})
	require.NoError(t, err)
	_, err = engine.SelectConfiguration(ctx, tenant, project.ID, cfg.ID)
	require.NoError(t, err)

	tree, err := engine.CreateTree(ctx, tenant, project.ID, "Account Takeover")
	require.NoError(t, err)

	_, err = engine.UpdateTree(ctx, tenant, project.ID, &domain.Tree{
		ID:         tree.ID,
		Title:      "Account Takeover",
		RootNodeID: "root",
		Nodes: []domain.Node{
			{ID: "root", Title: "Take over account", Children: []string{"phish", "stuff"}},
			{ID: "phish", Title: "Phish credentials", Condition: `config["mfa"]["enabled"] == false`},
			{ID: "stuff", Title: "Credential stuffing"},
		},
	})
	require.NoError(t, err)

	computed, err := engine.Materialize(ctx, tenant, project.ID, tree.ID)
	require.NoError(t, err)
	require.Len(t, computed.Nodes, 3)

	resolved := map[string]bool{}
	for _, n := range computed.Nodes {
		resolved[n.ID] = n.ConditionResolved
	}
	assert.True(t, resolved["root"], "unconditioned node applies")
	assert.True(t, resolved["stuff"], "unconditioned node applies")
	assert.False(t, resolved["phish"], "mfa is enabled, phishing branch is off")
}

func TestFacade_UndoRoundTrip(t *testing.T) {
	engine, err := thicket.New()
	require.NoError(t, err)

	ctx := context.Background()
	const tenant = "default"

	project, err := engine.CreateProject(ctx, tenant, "Versioned", "")
	require.NoError(t, err)
	tree, err := engine.CreateTree(ctx, tenant, project.ID, "Draft")
	require.NoError(t, err)

	for _, title := range []string{"First", "Second"} {
		_, err = engine.UpdateTree(ctx, tenant, project.ID, &domain.Tree{ID: tree.ID, Title: title})
		require.NoError(t, err)
	}

	restored, err := engine.UndoTree(ctx, tenant, project.ID, tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", restored.Title)

	// A second undo has nothing older to fall back to.
	_, err = engine.UndoTree(ctx, tenant, project.ID, tree.ID)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestFacade_DagAcrossTrees(t *testing.T) {
	engine, err := thicket.New()
	require.NoError(t, err)

	ctx := context.Background()
	const tenant = "default"

	project, err := engine.CreateProject(ctx, tenant, "Linked", "")
	require.NoError(t, err)

	child, err := engine.CreateTree(ctx, tenant, project.ID, "Supply Chain")
	require.NoError(t, err)
	_, err = engine.UpdateTree(ctx, tenant, project.ID, &domain.Tree{
		ID: child.ID, Title: "Supply Chain", RootNodeID: "sc",
		Nodes: []domain.Node{{ID: "sc", Title: "Compromise dependency"}},
	})
	require.NoError(t, err)

	parent, err := engine.CreateTree(ctx, tenant, project.ID, "Initial Access")
	require.NoError(t, err)
	_, err = engine.UpdateTree(ctx, tenant, project.ID, &domain.Tree{
		ID: parent.ID, Title: "Initial Access", RootNodeID: "ia",
		Nodes: []domain.Node{{ID: "ia", Title: "Gain access", Children: []string{"sc"}}},
	})
	require.NoError(t, err)

	dag, err := engine.Dag(ctx, tenant, project.ID, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, dag.ID)
	require.Len(t, dag.Children, 1)
	assert.Equal(t, child.ID, dag.Children[0].ID)
}

func TestEvaluate(t *testing.T) {
	engine, err := thicket.New()
	require.NoError(t, err)

	cfg := domain.Configuration{Attributes: map[string]any{"tier": "prod"}}
	assert.True(t, engine.Evaluate(`config["tier"] == "prod"`, cfg))
	assert.False(t, engine.Evaluate(`config["tier"] == "dev"`, cfg))
	assert.False(t, engine.Evaluate(`config["missing"] == 1`, cfg), "unknown attribute fails closed")
	assert.True(t, engine.Evaluate("", cfg), "empty condition always holds")
}
