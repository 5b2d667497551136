// Package metrics exposes table rebuild outcomes as Prometheus
// collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arthur-debert/linkify/pkg/rules"
	"github.com/arthur-debert/linkify/pkg/table"
)

// Reporter counts rebuilds and dropped rules, and tracks the size of
// the current table. It satisfies table.Reporter, so it plugs straight
// into table.WithReporter, usually alongside the log reporter via
// table.Multi.
type Reporter struct {
	rebuilds    prometheus.Counter
	rulesFailed prometheus.Counter
	rulesLoaded prometheus.Gauge
}

var _ table.Reporter = (*Reporter)(nil)

// NewReporter registers the collectors on reg and returns the
// reporter. Registering twice on the same registry panics, as usual
// for promauto; create one reporter per process.
func NewReporter(reg prometheus.Registerer) *Reporter {
	factory := promauto.With(reg)
	return &Reporter{
		rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkify_table_rebuilds_total",
			Help: "Table rebuilds since process start.",
		}),
		rulesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkify_table_rules_failed_total",
			Help: "Definitions dropped because they failed to compile.",
		}),
		rulesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkify_table_rules_loaded",
			Help: "Linkifiers in the current table.",
		}),
	}
}

// RuleFailed implements table.Reporter.
func (r *Reporter) RuleFailed(def rules.Definition, err error) {
	r.rulesFailed.Inc()
}

// Rebuilt implements table.Reporter.
func (r *Reporter) Rebuilt(loaded, failed int) {
	r.rebuilds.Inc()
	r.rulesLoaded.Set(float64(loaded))
}
