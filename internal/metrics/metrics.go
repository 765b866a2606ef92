// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and
// records nothing, so callers never have to branch.
type Metrics struct {
	ConditionsEvaluated prometheus.Counter
	ConditionsFailed    prometheus.Counter
	TreesMaterialized   prometheus.Counter
	DagTreesVisited     prometheus.Counter
	HistoryRecords      prometheus.Counter
}

// New builds the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConditionsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thicket_conditions_evaluated_total",
			Help: "Number of node conditions evaluated.",
		}),
		ConditionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thicket_conditions_failed_total",
			Help: "Number of node conditions that resolved to false because evaluation failed, including configuration lookup failures.",
		}),
		TreesMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thicket_trees_materialized_total",
			Help: "Number of computed trees produced.",
		}),
		DagTreesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thicket_dag_trees_visited_total",
			Help: "Number of trees visited during cross-tree DAG resolution.",
		}),
		HistoryRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thicket_history_records_total",
			Help: "Number of history entries written.",
		}),
	}
	reg.MustRegister(
		m.ConditionsEvaluated,
		m.ConditionsFailed,
		m.TreesMaterialized,
		m.DagTreesVisited,
		m.HistoryRecords,
	)
	return m
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// CountEvaluation records one condition evaluation, failed or not.
func (m *Metrics) CountEvaluation(failed bool) {
	if m == nil {
		return
	}
	inc(m.ConditionsEvaluated)
	if failed {
		inc(m.ConditionsFailed)
	}
}

// CountMaterialization records one computed tree.
func (m *Metrics) CountMaterialization() {
	if m == nil {
		return
	}
	inc(m.TreesMaterialized)
}

// CountDagVisit records one tree visited by the DAG resolver.
func (m *Metrics) CountDagVisit() {
	if m == nil {
		return
	}
	inc(m.DagTreesVisited)
}

// CountHistoryRecord records one ledger append.
func (m *Metrics) CountHistoryRecord() {
	if m == nil {
		return
	}
	inc(m.HistoryRecords)
}
