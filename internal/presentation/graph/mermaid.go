package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart from a computed tree.
// It applies semantic styling:
// - Root node: ((Circle))
// - Conditioned node: {Diamond} labelled with its condition
// - Default: [Rectangle]
// Nodes whose condition resolved false are greyed out. Child references
// that leave the tree are drawn as dotted arrows to a placeholder.
func GenerateMermaid(tree *domain.ComputedTree) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	owned := make(map[string]bool, len(tree.Nodes))
	for _, n := range tree.Nodes {
		owned[n.ID] = true
	}

	var pruned []string
	externals := map[string]bool{}

	for _, node := range tree.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == tree.RootNodeID:
			opener, closer = "((", "))"
		case node.Condition != "":
			opener, closer = "{", "}"
		}

		label := node.Title
		if label == "" {
			label = node.ID
		}
		if node.Condition != "" {
			// Escape double quotes for the Mermaid label.
			safeCondition := strings.ReplaceAll(node.Condition, "\"", "'")
			label = fmt.Sprintf("%s <br/> %s", label, safeCondition)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if !node.ConditionResolved {
			pruned = append(pruned, safeID)
		}

		for _, child := range node.Children {
			safeTo := sanitizeMermaidID(child)
			if owned[child] {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, safeTo))
				continue
			}
			// Cross-tree reference.
			if !externals[safeTo] {
				externals[safeTo] = true
				sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", safeTo, child))
			}
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", safeID, safeTo))
		}
	}

	if len(pruned) > 0 {
		sb.WriteString("\n    classDef pruned fill:#e5e7eb,stroke:#9ca3af,color:#6b7280;\n")
		for _, id := range pruned {
			sb.WriteString(fmt.Sprintf("    class %s pruned;\n", id))
		}
	}

	return sb.String()
}

// GenerateDagMermaid produces a Mermaid flowchart of tree-to-tree
// dependencies from a resolved DAG root.
func GenerateDagMermaid(root domain.DagItem) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	declared := map[string]bool{}
	writeDagEdges(&sb, root, declared)
	return sb.String()
}

func writeDagEdges(sb *strings.Builder, item domain.DagItem, declared map[string]bool) {
	safeID := sanitizeMermaidID(item.ID)
	if !declared[safeID] {
		declared[safeID] = true
		label := item.Title
		if label == "" {
			label = item.ID
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, label))
	}
	for _, child := range item.Children {
		writeDagEdges(sb, child, declared)
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(child.ID)))
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
