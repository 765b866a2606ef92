// Package runtime implements the tree computation engine: materialization
// of computed trees, cross-tree DAG resolution and the history ledger.
//
// The engine holds no mutable state of its own. Every operation is
// request-scoped; the stores are the only suspension points, and their
// failures degrade to safe defaults instead of aborting whole traversals.
package runtime

import (
	"log/slog"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/metrics"
	"github.com/aretw0/thicket/pkg/ports"
)

// Engine wires the collaborator stores to the core algorithms.
type Engine struct {
	stores  ports.Stores
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine over the given stores.
func NewEngine(stores ports.Stores, opts ...EngineOption) *Engine {
	e := &Engine{
		stores: stores,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
