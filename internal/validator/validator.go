// Package validator checks tree documents for structural problems before
// they are written. Cross-tree child references are legal and skipped; the
// DAG resolver deals with those at read time.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
)

// ValidateTree checks a tree for duplicate node IDs, a dangling root
// reference and nodes unreachable from the root. A tree without a root is
// valid as long as it is empty of nodes too (freshly created trees).
func ValidateTree(tree *domain.Tree) error {
	var errs []string

	seen := make(map[string]bool, len(tree.Nodes))
	for _, n := range tree.Nodes {
		if n.ID == "" {
			errs = append(errs, "node with empty id")
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node id: '%s'", n.ID))
		}
		seen[n.ID] = true
	}

	switch {
	case tree.RootNodeID == "" && len(tree.Nodes) > 0:
		errs = append(errs, "tree has nodes but no root")
	case tree.RootNodeID != "" && !seen[tree.RootNodeID]:
		errs = append(errs, fmt.Sprintf("root node '%s' not found", tree.RootNodeID))
	}

	// Crawl from the root; anything not reached is orphaned. Children that
	// are not owned here belong to other trees and end the walk.
	if tree.RootNodeID != "" && seen[tree.RootNodeID] {
		visited := make(map[string]bool)
		queue := []string{tree.RootNodeID}

		for len(queue) > 0 {
			currentID := queue[0]
			queue = queue[1:]

			if visited[currentID] {
				continue
			}
			visited[currentID] = true

			node := tree.Node(currentID)
			if node == nil {
				continue
			}
			for _, child := range node.Children {
				if seen[child] && !visited[child] {
					queue = append(queue, child)
				}
			}
		}

		for _, n := range tree.Nodes {
			if !visited[n.ID] {
				errs = append(errs, fmt.Sprintf("node '%s' unreachable from root", n.ID))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}

	return nil
}
