// Package metrics exports mining progress as Prometheus collectors. The
// metric set is fixed and known at compile time: a single process has
// one hash rate, one connection, and one share counter, so there is
// nothing to register on demand.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a point-in-time copy of the values a Reporter last
// recorded, for consumers (such as statusapi) that cannot scrape
// Prometheus text format.
type Snapshot struct {
	HashRate         float64 `json:"hash_rate"`
	SharesAccepted   uint64  `json:"shares_accepted"`
	SharesRejected   uint64  `json:"shares_rejected"`
	JobsReceived     uint64  `json:"jobs_received"`
	Connected        bool    `json:"connected"`
	Donating         bool    `json:"donating"`
}

// Reporter implements supervisor.Reporter by updating Prometheus
// collectors registered against its own Registry.
type Reporter struct {
	Registry *prometheus.Registry

	hashRate  prometheus.Gauge
	shares    *prometheus.CounterVec
	jobs      prometheus.Counter
	connected prometheus.Gauge
	donating  prometheus.Gauge

	mu   sync.Mutex
	snap Snapshot
}

// New builds a Reporter and registers its collectors against a fresh
// Registry.
func New() *Reporter {
	registry := prometheus.NewRegistry()

	r := &Reporter{
		Registry: registry,
		hashRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corexminer_hashrate_hashes_per_second",
			Help: "Current hash rate averaged over the tracker window.",
		}),
		shares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corexminer_shares_total",
			Help: "Shares submitted to the pool, labeled by outcome.",
		}, []string{"outcome"}),
		jobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corexminer_jobs_received_total",
			Help: "Jobs received from the active pool connection.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corexminer_connected",
			Help: "1 if the active pool session is connected, 0 otherwise.",
		}),
		donating: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corexminer_donating",
			Help: "1 if currently inside the donation window, 0 otherwise.",
		}),
	}

	registry.MustRegister(r.hashRate, r.shares, r.jobs, r.connected, r.donating)
	return r
}

func (r *Reporter) ReportHashRate(hashesPerSecond float64) {
	r.hashRate.Set(hashesPerSecond)
	r.mu.Lock()
	r.snap.HashRate = hashesPerSecond
	r.mu.Unlock()
}

func (r *Reporter) ReportShareFound(jobID string, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.shares.WithLabelValues(outcome).Inc()

	r.mu.Lock()
	if accepted {
		r.snap.SharesAccepted++
	} else {
		r.snap.SharesRejected++
	}
	r.mu.Unlock()
}

func (r *Reporter) ReportJobReceived(jobID string) {
	r.jobs.Inc()
	r.mu.Lock()
	r.snap.JobsReceived++
	r.mu.Unlock()
}

func (r *Reporter) ReportConnectionStatus(connected, donating bool) {
	r.connected.Set(boolToFloat(connected))
	r.donating.Set(boolToFloat(donating))

	r.mu.Lock()
	r.snap.Connected = connected
	r.snap.Donating = donating
	r.mu.Unlock()
}

// Snapshot returns a copy of the most recently reported values.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
