// Package dto decodes the loosely-typed tree documents handed back by the
// storage layer into domain types. Stored records are treated as
// partially-present documents: a missing field defaults to its type's empty
// value instead of failing the decode. The one strict part is the model
// attribute shape, which is rejected when it doesn't carry exactly one
// typed value.
package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/thicket/pkg/domain"
)

// treeDocument mirrors the stored tree shape. It uses "mapstructure" tags
// matching the document keys the API has always used.
type treeDocument struct {
	Title      string         `mapstructure:"title"`
	RootNodeID string         `mapstructure:"rootNodeId"`
	Nodes      []nodeDocument `mapstructure:"nodes"`
}

type nodeDocument struct {
	ID          string                      `mapstructure:"id"`
	Title       string                      `mapstructure:"title"`
	Description string                      `mapstructure:"description"`
	Condition   string                      `mapstructure:"conditionAttribute"`
	Children    []string                    `mapstructure:"children"`
	Attributes  map[string]domain.Attribute `mapstructure:"modelAttributes"`
}

// DecodeTree converts a raw stored document into a Tree, applying the
// defaulting rules: missing children become an empty list, missing
// attributes an empty map, a missing condition the empty (always visible)
// condition.
func DecodeTree(treeID string, doc domain.RawDocument) (*domain.Tree, error) {
	var record treeDocument
	// Weak typing is required because documents that round-trip through
	// JSON come back with every number as float64.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &record,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building tree decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return nil, fmt.Errorf("decoding tree %s: %w", treeID, err)
	}

	tree := &domain.Tree{
		ID:         treeID,
		Title:      record.Title,
		RootNodeID: record.RootNodeID,
		Nodes:      make([]domain.Node, 0, len(record.Nodes)),
	}

	for _, n := range record.Nodes {
		node := domain.Node{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Condition:   n.Condition,
			Children:    n.Children,
			Attributes:  n.Attributes,
		}
		if node.Children == nil {
			node.Children = []string{}
		}
		if node.Attributes == nil {
			node.Attributes = map[string]domain.Attribute{}
		}
		for name, attr := range node.Attributes {
			if err := attr.Validate(); err != nil {
				return nil, fmt.Errorf("tree %s node %s attribute %q: %w", treeID, n.ID, name, err)
			}
		}
		tree.Nodes = append(tree.Nodes, node)
	}

	return tree, nil
}

// EncodeTree converts a Tree back into its stored document form. It is the
// inverse of DecodeTree and is what history snapshots and tree writes
// persist.
func EncodeTree(tree *domain.Tree) domain.RawDocument {
	nodes := make([]any, 0, len(tree.Nodes))
	for _, n := range tree.Nodes {
		attrs := make(map[string]any, len(n.Attributes))
		for name, attr := range n.Attributes {
			stored := map[string]any{}
			switch {
			case attr.String != nil:
				stored["value_string"] = *attr.String
			case attr.Int != nil:
				stored["value_int"] = *attr.Int
			case attr.Float != nil:
				stored["value_float"] = *attr.Float
			}
			attrs[name] = stored
		}

		children := n.Children
		if children == nil {
			children = []string{}
		}

		nodes = append(nodes, map[string]any{
			"id":                 n.ID,
			"title":              n.Title,
			"description":        n.Description,
			"conditionAttribute": n.Condition,
			"children":           children,
			"modelAttributes":    attrs,
		})
	}

	return domain.RawDocument{
		"title":      tree.Title,
		"rootNodeId": tree.RootNodeID,
		"nodes":      nodes,
	}
}
