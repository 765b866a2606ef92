package domain

// Configuration is a named set of project configuration values. Attributes
// is a nested JSON-shaped document: leaves are strings, numbers or booleans,
// and objects nest further objects. Node conditions are evaluated against
// the flattened form of this document.
type Configuration struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
}

// Project groups trees and configurations under one owner. SelectedConfigID
// points at one of RelatedConfigIDs; it is a pointer by identifier, not an
// ownership transfer, and may be empty when nothing is selected yet.
type Project struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	RelatedTreeIDs   []string `json:"relatedTreeIds" yaml:"relatedTreeIds"`
	RelatedConfigIDs []string `json:"relatedConfigIds" yaml:"relatedConfigIds"`
	SelectedConfigID string   `json:"selectedConfigId,omitempty" yaml:"selectedConfigId,omitempty"`
}
