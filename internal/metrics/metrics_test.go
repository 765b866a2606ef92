package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/thicket/internal/metrics"
)

func TestNilMetricsRecordsNothing(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CountEvaluation(true)
		m.CountEvaluation(false)
		m.CountMaterialization()
		m.CountDagVisit()
		m.CountHistoryRecord()
	})
}

func TestCountersIncrement(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.CountEvaluation(false)
	m.CountEvaluation(true)
	m.CountMaterialization()
	m.CountDagVisit()
	m.CountDagVisit()
	m.CountHistoryRecord()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConditionsEvaluated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConditionsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreesMaterialized))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DagTreesVisited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryRecords))
}
