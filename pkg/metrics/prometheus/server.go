// Package prometheus provides Prometheus-backed implementations of the
// tcpkit metrics interfaces, registered against the process-wide registry
// managed by pkg/metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tcpkit/tcpkit/pkg/metrics"
)

// serverMetrics is the Prometheus implementation of metrics.ServerMetrics.
type serverMetrics struct {
	binds             *prometheus.CounterVec
	connsAccepted     prometheus.Counter
	connsClosed       prometheus.Counter
	connsForceClosed  prometheus.Counter
	activeConnections prometheus.Gauge
	frames            *prometheus.CounterVec
	frameBytes        *prometheus.HistogramVec
	loopTasks         *prometheus.CounterVec
	loopQueueDepth    *prometheus.GaugeVec
}

// NewServerMetrics creates a Prometheus-backed ServerMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewServerMetrics() metrics.ServerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serverMetrics{
		binds: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tcpkit_bind_attempts_total",
				Help: "Total number of bind attempts by transport backend and outcome",
			},
			[]string{"transport", "outcome"},
		),
		connsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tcpkit_connections_accepted_total",
				Help: "Total number of accepted TCP connections",
			},
		),
		connsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tcpkit_connections_closed_total",
				Help: "Total number of closed TCP connections",
			},
		),
		connsForceClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tcpkit_connections_force_closed_total",
				Help: "Total number of connections force-closed after the shutdown grace period",
			},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tcpkit_active_connections",
				Help: "Current number of active TCP connections",
			},
		),
		frames: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tcpkit_frames_total",
				Help: "Total number of frames processed by direction",
			},
			[]string{"direction"}, // "in", "out"
		),
		frameBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tcpkit_frame_bytes",
				Help: "Distribution of frame payload sizes in bytes",
				Buckets: []float64{
					64,      // control frames
					512,     //
					2048,    // small class
					8192,    //
					32768,   // medium class
					131072,  //
					1048576, // large class
				},
			},
			[]string{"direction"},
		),
		loopTasks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tcpkit_loop_tasks_total",
				Help: "Total number of units of work executed by reactor loops",
			},
			[]string{"group", "kind"}, // group: "boss"/"worker", kind: "io"/"task"
		),
		loopQueueDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tcpkit_loop_queue_depth",
				Help: "Current queued work per reactor loop",
			},
			[]string{"loop"},
		),
	}
}

func (m *serverMetrics) RecordBind(transport string, outcome string) {
	m.binds.WithLabelValues(transport, outcome).Inc()
}

func (m *serverMetrics) RecordConnectionAccepted() {
	m.connsAccepted.Inc()
}

func (m *serverMetrics) RecordConnectionClosed() {
	m.connsClosed.Inc()
}

func (m *serverMetrics) RecordConnectionForceClosed() {
	m.connsForceClosed.Inc()
}

func (m *serverMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *serverMetrics) RecordFrame(direction string, bytes int) {
	m.frames.WithLabelValues(direction).Inc()
	m.frameBytes.WithLabelValues(direction).Observe(float64(bytes))
}

func (m *serverMetrics) RecordLoopTask(group string, kind string) {
	m.loopTasks.WithLabelValues(group, kind).Inc()
}

func (m *serverMetrics) SetLoopQueueDepth(loop string, depth int) {
	m.loopQueueDepth.WithLabelValues(loop).Set(float64(depth))
}
