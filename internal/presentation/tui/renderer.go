package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/thicket/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It auto-detects the terminal background so trees read well on both
// light and dark themes.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// TreeMarkdown lays out a computed tree as nested list markdown, following
// child links from the root. Nodes whose condition resolved false are struck
// through. Nodes unreachable from the root are listed separately so a
// malformed tree still shows everything it contains.
func TreeMarkdown(tree *domain.ComputedTree) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", tree.Title)

	byID := make(map[string]*domain.ComputedNode, len(tree.Nodes))
	for i := range tree.Nodes {
		byID[tree.Nodes[i].ID] = &tree.Nodes[i]
	}

	printed := map[string]bool{}
	writeTreeNodes(&sb, byID, tree.RootNodeID, 0, printed)

	var orphans []string
	for _, n := range tree.Nodes {
		if !printed[n.ID] {
			orphans = append(orphans, n.ID)
		}
	}
	if len(orphans) > 0 {
		sb.WriteString("\n## Unreachable nodes\n\n")
		for _, id := range orphans {
			writeTreeNodes(&sb, byID, id, 0, printed)
		}
	}

	return sb.String()
}

func writeTreeNodes(sb *strings.Builder, byID map[string]*domain.ComputedNode, id string, depth int, printed map[string]bool) {
	node, ok := byID[id]
	if !ok || printed[id] {
		return
	}
	printed[id] = true

	label := node.Title
	if label == "" {
		label = node.ID
	}
	if !node.ConditionResolved {
		label = "~~" + label + "~~"
	}
	fmt.Fprintf(sb, "%s- %s\n", strings.Repeat("  ", depth), label)

	for _, child := range node.Children {
		if _, owned := byID[child]; !owned {
			// External reference into another tree.
			fmt.Fprintf(sb, "%s- *%s (external)*\n", strings.Repeat("  ", depth+1), child)
			continue
		}
		writeTreeNodes(sb, byID, child, depth+1, printed)
	}
}

// DagMarkdown lays out a resolved cross-tree graph as nested list markdown.
func DagMarkdown(root domain.DagItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", root.Title)
	for _, child := range root.Children {
		writeDagItem(&sb, child, 0)
	}
	if len(root.Children) == 0 {
		sb.WriteString("*no downstream trees*\n")
	}
	return sb.String()
}

func writeDagItem(sb *strings.Builder, item domain.DagItem, depth int) {
	label := item.Title
	if label == "" {
		label = item.ID
	}
	fmt.Fprintf(sb, "%s- %s\n", strings.Repeat("  ", depth), label)
	for _, child := range item.Children {
		writeDagItem(sb, child, depth+1)
	}
}
