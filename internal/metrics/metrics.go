package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerlog_cycles_total",
			Help: "Total acquisition cycles attempted",
		},
	)

	CyclesSkippedOffline = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerlog_cycles_skipped_offline_total",
			Help: "Cycles skipped because the inverter was unreachable",
		},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerlog_upstream_errors_total",
			Help: "Upstream fetch failures by source",
		},
		[]string{"source"},
	)

	SamplesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerlog_samples_appended_total",
			Help: "Samples appended to the powerlog table",
		},
	)

	RowsStreamed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerlog_rows_streamed_total",
			Help: "Query result rows streamed to API clients",
		},
		[]string{"query"},
	)
)
