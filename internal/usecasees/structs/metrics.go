package structs

import "github.com/prometheus/client_golang/prometheus"

type MetricConst string

const (
	MetricOrderPlaced          MetricConst = "orders_placed_total"
	MetricOrderFilled          MetricConst = "orders_filled_total"
	MetricOrderCancelled       MetricConst = "orders_cancelled_total"
	MetricOrderExecutionFailed MetricConst = "order_execution_failures_total"
)

func (m MetricConst) ToString() string {
	return string(m)
}

// Metrics is the counter set built in cmd. A nil map is a no-op so tests can
// run without a registry.
type Metrics map[MetricConst]prometheus.Counter

func (m Metrics) Inc(c MetricConst) {
	if m == nil {
		return
	}
	if counter, ok := m[c]; ok {
		counter.Inc()
	}
}
