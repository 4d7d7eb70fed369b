// Package metrics defines the Prometheus collectors, registered via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command path metrics
var (
	// CommandsTotal counts dispatched commands by command name and outcome
	// ("ok" or the wire error code).
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "face_commands_total",
			Help: "Dispatched face commands by command and outcome",
		},
		[]string{"cmd", "status"},
	)

	// CommandDuration tracks dispatch latency in seconds, lock wait included.
	CommandDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "face_command_duration_seconds",
			Help:    "Command dispatch duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// PayloadsDropped counts oversized payloads rejected silently at the
	// transport boundary.
	PayloadsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_payloads_dropped_total",
			Help: "Oversized websocket payloads dropped without a response",
		},
	)
)

// Render loop metrics
var (
	// RenderTicks counts completed render ticks.
	RenderTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "render_ticks_total",
			Help: "Completed render ticks",
		},
	)

	// RenderTicksSkipped counts ticks skipped because the face lock was busy.
	RenderTicksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "render_ticks_skipped_total",
			Help: "Render ticks skipped due to lock contention",
		},
	)
)

// Render feed metrics
var (
	// FeedClients tracks currently connected render-feed clients.
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "render_feed_clients",
			Help: "Connected render-feed websocket clients",
		},
	)

	// FeedSlowClientsEvicted counts clients dropped because their send
	// buffer stayed full.
	FeedSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "render_feed_slow_clients_evicted_total",
			Help: "Render-feed clients evicted due to a full send buffer",
		},
	)
)
