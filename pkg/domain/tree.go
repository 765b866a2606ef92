package domain

// Tree is the persisted form of a single attack/risk tree.
type Tree struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	RootNodeID string `json:"rootNodeId" yaml:"rootNodeId"`
	Nodes      []Node `json:"nodes" yaml:"nodes"`
}

// ComputedTree is the ephemeral, condition-resolved view of a Tree against
// one configuration.
type ComputedTree struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	RootNodeID string         `json:"rootNodeId"`
	Nodes      []ComputedNode `json:"nodes"`
}

// Node returns the node owned by the tree with the given id, or nil.
func (t *Tree) Node(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// RawDocument is a tree as the storage layer sees it: a loosely-typed
// document where any field may be absent. Decoding into a Tree applies the
// defaulting rules (missing children become an empty list, missing
// attributes an empty map).
type RawDocument map[string]any
