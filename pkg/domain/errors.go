package domain

import "errors"

// ErrTreeNotFound is returned when a tree ID cannot be found in the store.
var ErrTreeNotFound = errors.New("tree not found")

// ErrProjectNotFound is returned when a project ID cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrConfigNotFound is returned when a configuration cannot be found, or a
// project has no selected configuration.
var ErrConfigNotFound = errors.New("configuration not found")

// ErrNodeNotFound is returned when no tree owns the given node ID.
var ErrNodeNotFound = errors.New("node not found")

// ErrNothingToUndo is returned when fewer than two history entries exist
// for an entity, so there is no earlier snapshot to move back to.
var ErrNothingToUndo = errors.New("nothing to undo")
