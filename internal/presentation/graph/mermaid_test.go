package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/thicket/pkg/domain"
)

func TestGenerateMermaid_ShapesAndEdges(t *testing.T) {
	tree := &domain.ComputedTree{
		ID:         "t1",
		Title:      "Shapes",
		RootNodeID: "root",
		Nodes: []domain.ComputedNode{
			{Node: domain.Node{ID: "root", Title: "Root", Children: []string{"gate"}}, ConditionResolved: true},
			{Node: domain.Node{ID: "gate", Title: "Gate", Condition: `config["x"] == 1`}, ConditionResolved: true},
		},
	}

	out := GenerateMermaid(tree)

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `root(("Root"))`, "root is a circle")
	assert.Contains(t, out, `gate{"Gate <br/> config['x'] == 1"}`, "conditioned node is a diamond with escaped quotes")
	assert.Contains(t, out, "root --> gate")
}

func TestGenerateMermaid_PrunedNodesGreyedOut(t *testing.T) {
	tree := &domain.ComputedTree{
		RootNodeID: "a",
		Nodes: []domain.ComputedNode{
			{Node: domain.Node{ID: "a", Title: "A"}, ConditionResolved: true},
			{Node: domain.Node{ID: "b", Title: "B", Condition: `config["off"] == true`}, ConditionResolved: false},
		},
	}

	out := GenerateMermaid(tree)
	assert.Contains(t, out, "classDef pruned")
	assert.Contains(t, out, "class b pruned;")
	assert.NotContains(t, out, "class a pruned;")
}

func TestGenerateMermaid_ExternalReferenceDotted(t *testing.T) {
	tree := &domain.ComputedTree{
		RootNodeID: "a",
		Nodes: []domain.ComputedNode{
			{Node: domain.Node{ID: "a", Title: "A", Children: []string{"other-tree-node"}}, ConditionResolved: true},
		},
	}

	out := GenerateMermaid(tree)
	assert.Contains(t, out, "a -.-> other_tree_node")
	assert.Contains(t, out, `other_tree_node[/"other-tree-node"/]`)
}

func TestGenerateDagMermaid(t *testing.T) {
	root := domain.DagItem{
		ID:    "parent",
		Title: "Parent",
		Children: []domain.DagItem{
			{ID: "child-a", Title: "Child A"},
			{ID: "child-b", Title: "Child B", Children: []domain.DagItem{
				{ID: "grand", Title: "Grand"},
			}},
		},
	}

	out := GenerateDagMermaid(root)
	assert.Contains(t, out, `parent["Parent"]`)
	assert.Contains(t, out, "parent --> child_a")
	assert.Contains(t, out, "parent --> child_b")
	assert.Contains(t, out, "child_b --> grand")
}
