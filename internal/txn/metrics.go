package txn

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/squadbook/internal/model"
)

// Unit outcomes
const (
	outcomeCommitted   = "committed"
	outcomeRolledBack  = "rolled_back"
	outcomeOpenFailed  = "open_failed"
	outcomeBeginFailed = "begin_failed"
)

// Metrics counts executor outcomes per entity kind.
type Metrics struct {
	Units *prometheus.CounterVec
}

// NewMetrics creates the executor metrics and registers them on reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "squadbook_units_total",
				Help: "Total number of units of work by entity and outcome",
			},
			[]string{"entity", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Units)
	}
	return m
}

func (m *Metrics) observe(kind model.EntityKind, outcome string) {
	if m == nil {
		return
	}
	m.Units.WithLabelValues(string(kind), outcome).Inc()
}
