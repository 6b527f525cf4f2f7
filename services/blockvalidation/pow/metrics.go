package pow

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusRuleChecks       *prometheus.CounterVec
	prometheusRuleFailures     *prometheus.CounterVec
	prometheusRuleDuration     *prometheus.HistogramVec
	prometheusFamilySelections *prometheus.CounterVec
	prometheusMetricsInitOnce  sync.Once
)

// initPrometheusMetrics registers the metrics once per process.
func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusRuleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "headerchain",
			Subsystem: "pow",
			Name:      "rule_checks",
			Help:      "Number of difficulty rules evaluated",
		},
		[]string{"kind"},
	)

	prometheusRuleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "headerchain",
			Subsystem: "pow",
			Name:      "rule_failures",
			Help:      "Number of candidates rejected by a difficulty rule",
		},
		[]string{"kind"},
	)

	prometheusRuleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "headerchain",
			Subsystem: "pow",
			Name:      "rule_duration_seconds",
			Help:      "Time taken to evaluate a difficulty rule",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"kind"},
	)

	prometheusFamilySelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "headerchain",
			Subsystem: "pow",
			Name:      "family_selections",
			Help:      "Number of rule pools built per difficulty algorithm family",
		},
		[]string{"family"},
	)
}
