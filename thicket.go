package thicket

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/thicket/internal/metrics"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/eval"
	"github.com/aretw0/thicket/pkg/ports"
)

// Version of the library. Overridden at release time via ldflags.
var Version = "0.1.0"

// Engine is the high-level entry point for the Thicket library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	stores  ports.Stores
	logger  *slog.Logger
	reg     prometheus.Registerer
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStores injects custom storage backends, bypassing the default
// in-memory store.
func WithStores(stores ports.Stores) Option {
	return func(e *Engine) {
		e.stores = stores
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetricsRegistry registers the engine's counters with a Prometheus
// registry.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.reg = reg
	}
}

// New initializes a new Thicket Engine.
// By default it keeps everything in memory; inject stores backed by Redis
// or Badger for persistence.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.stores.Trees == nil {
		store := memory.NewStore()
		eng.stores = ports.Stores{Trees: store, Configs: store, History: store}
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
	}
	if eng.reg != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithMetrics(metrics.New(eng.reg)))
	}

	eng.runtime = runtime.NewEngine(eng.stores, runtimeOpts...)
	return eng, nil
}

// Runtime exposes the underlying engine for adapters that need the full
// operation surface (the HTTP server, the CLI).
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}

// Evaluate checks a single condition expression against a configuration.
// It never fails: malformed or unsatisfiable conditions evaluate to false.
func (e *Engine) Evaluate(condition string, cfg domain.Configuration) bool {
	return eval.Evaluate(condition, cfg)
}

// CreateProject stores a new project.
func (e *Engine) CreateProject(ctx context.Context, tenant, title, description string) (*domain.Project, error) {
	return e.runtime.CreateProject(ctx, tenant, title, description)
}

// ListProjects returns all projects in a tenant.
func (e *Engine) ListProjects(ctx context.Context, tenant string) ([]domain.Project, error) {
	return e.runtime.ListProjects(ctx, tenant)
}

// Project returns one project.
func (e *Engine) Project(ctx context.Context, tenant, projectID string) (*domain.Project, error) {
	return e.runtime.Project(ctx, tenant, projectID)
}

// CreateTree stores a new empty tree under a project.
func (e *Engine) CreateTree(ctx context.Context, tenant, projectID, title string) (*domain.Tree, error) {
	return e.runtime.CreateTree(ctx, tenant, projectID, title)
}

// UpdateTree replaces a tree's content, recording it in history first, and
// returns the computed view of the new content.
func (e *Engine) UpdateTree(ctx context.Context, tenant, projectID string, tree *domain.Tree) (*domain.ComputedTree, error) {
	return e.runtime.UpdateTree(ctx, tenant, projectID, tree)
}

// UndoTree reverts a tree to its previous recorded version.
func (e *Engine) UndoTree(ctx context.Context, tenant, projectID, treeID string) (*domain.ComputedTree, error) {
	return e.runtime.UndoTree(ctx, tenant, projectID, treeID)
}

// DeleteTree removes a tree.
func (e *Engine) DeleteTree(ctx context.Context, tenant, treeID string) error {
	return e.runtime.DeleteTree(ctx, tenant, treeID)
}

// ListTrees returns id/title pairs for a project's trees.
func (e *Engine) ListTrees(ctx context.Context, tenant, projectID string) ([]domain.DagItem, error) {
	return e.runtime.ListTrees(ctx, tenant, projectID)
}

// Materialize computes a tree against its project's selected configuration:
// every node comes back flagged with whether its condition held.
func (e *Engine) Materialize(ctx context.Context, tenant, projectID, treeID string) (*domain.ComputedTree, error) {
	return e.runtime.Materialize(ctx, tenant, projectID, treeID)
}

// ResolveDown walks cross-tree references downward from a tree and returns
// the dependency graph as nested items.
func (e *Engine) ResolveDown(ctx context.Context, tenant, projectID, treeID string) []domain.DagItem {
	return e.runtime.ResolveDown(ctx, tenant, projectID, treeID)
}

// Dag materializes the starting tree and wraps its downward dependency
// graph in a single root item.
func (e *Engine) Dag(ctx context.Context, tenant, projectID, treeID string) (*domain.DagItem, error) {
	return e.runtime.Dag(ctx, tenant, projectID, treeID)
}

// History returns the recorded versions of a tree.
func (e *Engine) History(ctx context.Context, tenant, treeID string) ([]domain.HistoryEntry, error) {
	return e.runtime.History(ctx, tenant, treeID)
}

// FindTreeOwningNode resolves which tree owns a node.
func (e *Engine) FindTreeOwningNode(ctx context.Context, tenant, nodeID string) (string, error) {
	return e.runtime.FindTreeOwningNode(ctx, tenant, nodeID)
}

// CreateConfiguration stores a configuration under a project.
func (e *Engine) CreateConfiguration(ctx context.Context, tenant, projectID string, cfg *domain.Configuration) (*domain.Configuration, error) {
	return e.runtime.CreateConfiguration(ctx, tenant, projectID, cfg)
}

// UpdateConfiguration replaces a configuration's content.
func (e *Engine) UpdateConfiguration(ctx context.Context, tenant, configID string, cfg *domain.Configuration) error {
	return e.runtime.UpdateConfiguration(ctx, tenant, configID, cfg)
}

// Configuration returns one configuration.
func (e *Engine) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	return e.runtime.Configuration(ctx, tenant, configID)
}

// ListConfigurations returns the IDs of a project's configurations.
func (e *Engine) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	return e.runtime.ListConfigurations(ctx, tenant, projectID)
}

// SelectedConfiguration resolves the configuration a project evaluates
// conditions against.
func (e *Engine) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	return e.runtime.SelectedConfiguration(ctx, tenant, projectID)
}

// SelectConfiguration points a project at one of its configurations.
func (e *Engine) SelectConfiguration(ctx context.Context, tenant, projectID, configID string) (*domain.Configuration, error) {
	return e.runtime.SelectConfiguration(ctx, tenant, projectID, configID)
}
