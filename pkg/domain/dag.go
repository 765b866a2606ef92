package domain

// DagItem is one tree's position in the cross-tree reference graph. It is
// built per request and never persisted. Children appear in the order their
// external references were first discovered.
type DagItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Children []DagItem `json:"children"`
}
