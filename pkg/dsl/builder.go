package dsl

import (
	"fmt"

	"github.com/aretw0/thicket/internal/validator"
	"github.com/aretw0/thicket/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	title  string
	rootID string
	order  []string
	nodes  map[string]*NodeBuilder
}

// NewTree creates a new tree builder.
func NewTree(title string) *Builder {
	return &Builder{
		title: title,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Root creates the root node. Calling it again moves the root.
func (b *Builder) Root(id, title string) *NodeBuilder {
	b.rootID = id
	return b.Node(id, title)
}

// Node creates a new node in the tree.
// If the node already exists, it returns the existing builder.
func (b *Builder) Node(id, title string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:       id,
			Title:    title,
			Children: []string{},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the tree and validates its structure. Node order follows
// declaration order.
func (b *Builder) Build() (*domain.Tree, error) {
	tree := &domain.Tree{
		Title:      b.title,
		RootNodeID: b.rootID,
		Nodes:      make([]domain.Node, 0, len(b.order)),
	}
	for _, id := range b.order {
		tree.Nodes = append(tree.Nodes, b.nodes[id].node)
	}

	if err := validator.ValidateTree(tree); err != nil {
		return nil, fmt.Errorf("invalid tree %q: %w", b.title, err)
	}
	return tree, nil
}
