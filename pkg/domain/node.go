package domain

// Node is a single step in a tree. IDs are unique within the owning tree.
// A child reference may point at a node owned by a different tree; those
// cross-tree edges are what the DAG resolver follows.
type Node struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`

	// Condition is a boolean expression gating node visibility, in the
	// surface syntax `config["a"]["b"] == ...`. Empty means always visible.
	Condition string `json:"conditionAttribute" yaml:"conditionAttribute"`

	Attributes map[string]Attribute `json:"modelAttributes" yaml:"modelAttributes"`
	Children   []string             `json:"children" yaml:"children"`
}

// ComputedNode is a Node whose condition has been resolved against one
// configuration. It is derived per request and never persisted.
type ComputedNode struct {
	Node
	ConditionResolved bool `json:"conditionResolved"`
}
