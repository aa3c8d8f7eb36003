// Package runtime hosts process-lifetime loops that sit above the core
// graph: right now, a periodic metrics collector.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/graph"
)

// MetricsCallback receives each periodic metrics sweep. Implementations
// must be safe for concurrent use.
type MetricsCallback func(graph.Metrics)

// MetricsTicker periodically calls CollectMetrics on a graph and hands
// the result to a callback, e.g. to feed an exporter that prefers to be
// pushed to rather than scraped.
type MetricsTicker struct {
	mu       sync.RWMutex
	graph    *graph.Graph
	callback MetricsCallback
	interval time.Duration
	running  bool
}

// NewMetricsTicker creates a ticker over g. An interval of zero defaults
// to 5 seconds.
func NewMetricsTicker(g *graph.Graph, callback MetricsCallback, interval time.Duration) *MetricsTicker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &MetricsTicker{graph: g, callback: callback, interval: interval}
}

// Run blocks until ctx is cancelled, collecting metrics once immediately
// and then on every interval.
func (m *MetricsTicker) Run(ctx context.Context) {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	slog.Info("metrics ticker started", "interval", m.interval)

	m.collect()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("metrics ticker stopping")
			return
		case <-ticker.C:
			m.collect()
		}
	}
}

func (m *MetricsTicker) collect() {
	metrics := m.graph.CollectMetrics()
	if m.callback != nil {
		m.callback(metrics)
	}
}

// Running reports whether the ticker loop is currently active.
func (m *MetricsTicker) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
