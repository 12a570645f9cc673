package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tradesim/internal/usecasees/structs"
)

func (a *App) InitMetrics() {
	metrics := structs.Metrics{}

	for _, name := range []structs.MetricConst{
		structs.MetricOrderPlaced,
		structs.MetricOrderFilled,
		structs.MetricOrderCancelled,
		structs.MetricOrderExecutionFailed,
	} {
		metrics[name] = promauto.NewCounter(prometheus.CounterOpts{
			Name: name.ToString(),
			Help: name.ToString(),
		})
	}

	a.Metrics = metrics
}
