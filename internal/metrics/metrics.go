// Package metrics records run statistics with Prometheus collectors.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Block outcomes.
const (
	OutcomeStored = "stored"
	OutcomeFailed = "failed"
)

// Recorder owns a private registry so a run can be dumped to a textfile.
type Recorder struct {
	registry *prometheus.Registry

	blocksTotal        *prometheus.CounterVec
	pageBytes          *prometheus.GaugeVec
	runDurationSeconds prometheus.Gauge
	lastSuccess        prometheus.Gauge
}

// NewRecorder builds a Recorder with its collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		blocksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exhibitor_blocks_total",
				Help: "Exhibitor blocks processed, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		pageBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "exhibitor_page_bytes",
				Help: "Size of the fetched listing page, labeled by site.",
			},
			[]string{"site"},
		),
		runDurationSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "exhibitor_run_duration_seconds",
				Help: "Wall time of the last scrape run.",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "exhibitor_last_success_timestamp_seconds",
				Help: "Unix time of the last run that completed without a fatal error.",
			},
		),
	}
}

// ObserveBlock counts one processed block.
func (r *Recorder) ObserveBlock(outcome string) {
	if r == nil {
		return
	}
	r.blocksTotal.WithLabelValues(outcome).Inc()
}

// ObservePage records the fetched page size.
func (r *Recorder) ObservePage(site string, bytesFetched int) {
	if r == nil {
		return
	}
	r.pageBytes.WithLabelValues(SanitizeSite(site)).Set(float64(bytesFetched))
}

// ObserveRun records the run duration and, when succeeded, the completion time.
func (r *Recorder) ObserveRun(duration time.Duration, succeeded bool, finishedAt time.Time) {
	if r == nil {
		return
	}
	r.runDurationSeconds.Set(duration.Seconds())
	if succeeded {
		r.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// WriteTextfile writes all collectors in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
