package dsl

import "github.com/aretw0/thicket/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Describe sets the node description.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.node.Description = description
	return n
}

// When gates the node behind a condition over the selected configuration,
// e.g. `config["cloud"] == true`. Empty means always visible.
func (n *NodeBuilder) When(condition string) *NodeBuilder {
	n.node.Condition = condition
	return n
}

// Attr attaches a typed model attribute to the node.
func (n *NodeBuilder) Attr(name string, attr domain.Attribute) *NodeBuilder {
	if n.node.Attributes == nil {
		n.node.Attributes = make(map[string]domain.Attribute)
	}
	n.node.Attributes[name] = attr
	return n
}

// Children appends child references. IDs not owned by this tree are
// cross-tree references.
func (n *NodeBuilder) Children(ids ...string) *NodeBuilder {
	n.node.Children = append(n.node.Children, ids...)
	return n
}

// Child creates (or fetches) a node in the same tree, links it as a child
// of this node, and returns its builder.
func (n *NodeBuilder) Child(id, title string) *NodeBuilder {
	child := n.builder.Node(id, title)
	n.node.Children = append(n.node.Children, id)
	return child
}

// Tree returns the owning builder, for continuing a chain after
// configuring a node.
func (n *NodeBuilder) Tree() *Builder {
	return n.builder
}
