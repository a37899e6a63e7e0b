package paytracker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	linesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paytracker_lines_received_total",
		Help: "Raw input lines staged for the next report cycle.",
	})

	linesMerged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paytracker_lines_merged_total",
		Help: "Valid payment lines merged into the traffic.",
	})

	linesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paytracker_lines_rejected_total",
		Help: "Malformed or unknown currency lines dropped during a merge.",
	})

	pendingLines = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paytracker_pending_lines",
		Help: "Lines waiting in the pending buffer.",
	})

	trackedCurrencies = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paytracker_tracked_currencies",
		Help: "Currencies present in the running traffic, zero totals included.",
	})

	reportCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paytracker_report_cycles_total",
			Help: "Report cycles executed, by trigger.",
		},
		[]string{"trigger"},
	)

	rateFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paytracker_rate_fetches_total",
			Help: "Exchange rate fetches, by outcome.",
		},
		[]string{"outcome"},
	)

	reportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "paytracker_report_duration_seconds",
		Help:    "Duration of a report cycle, rate fetch included.",
		Buckets: prometheus.DefBuckets,
	})
)

// RegisterMetrics registers the tracker metrics into reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		linesReceived, linesMerged, linesRejected,
		pendingLines, trackedCurrencies,
		reportCycles, rateFetches, reportDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MetricsHandler returns an http.Handler serving the metrics registered in
// the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
