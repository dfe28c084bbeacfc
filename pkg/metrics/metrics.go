// Package metrics holds the Prometheus collectors shared by the printer
// client and the status monitor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BridgeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zebraprint_bridge_attempts_total",
		Help: "Attempts made against the printer bridge, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	RetriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zebraprint_bridge_retries_exhausted_total",
		Help: "Bridge calls that failed on every attempt",
	}, []string{"endpoint"})
	StatusChecks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zebraprint_status_checks_total",
		Help: "Printer status queries parsed",
	})
	StatusErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zebraprint_status_errors_total",
		Help: "Printer error conditions reported by status queries, by label",
	}, []string{"label"})
	PrinterReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zebraprint_printer_ready",
		Help: "1 when the last status check reported the printer ready to print",
	})
	PrinterConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zebraprint_printer_connected",
		Help: "1 when the last connection probe got a response from the printer",
	})
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// SetBool stores b as 0 or 1 on the gauge.
func SetBool(g prometheus.Gauge, b bool) {
	if b {
		g.Set(1)
		return
	}
	g.Set(0)
}

// Handler returns the mux served by `zebraprint watch`.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
