// Package metrics provides Prometheus metrics for the task subsystem and
// the websocket push channel. It follows Prometheus naming conventions with
// the service name as a prefix.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/k3ss-official/total-recall/internal/events"
	"github.com/k3ss-official/total-recall/internal/task"
)

// Metrics holds the server's Prometheus collectors on a private registry.
// It implements events.Handler so task status changes can be observed
// straight off the emitter.
type Metrics struct {
	registry *prometheus.Registry

	// taskStatusTotal counts status transitions by task kind and status
	taskStatusTotal *prometheus.CounterVec
	// taskItemsTotal counts per-item outcomes by task kind and result
	taskItemsTotal *prometheus.CounterVec
	// tasksActive tracks tasks that have been created but not finished
	tasksActive prometheus.Gauge
	// wsConnections tracks currently connected websocket clients
	wsConnections prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry, alongside the standard Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.taskStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recall_task_status_total",
			Help: "Task status transitions by kind and resulting status",
		},
		[]string{"kind", "status"},
	)

	m.taskItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recall_task_items_total",
			Help: "Per-item task outcomes by kind and result",
		},
		[]string{"kind", "result"},
	)

	m.tasksActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recall_tasks_active",
			Help: "Tasks created but not yet in a terminal status",
		},
	)

	m.wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recall_ws_connections",
			Help: "Currently connected websocket clients",
		},
	)

	m.registry.MustRegister(
		m.taskStatusTotal,
		m.taskItemsTotal,
		m.tasksActive,
		m.wsConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// HandleEvent implements events.Handler, updating the task collectors from
// status change events.
func (m *Metrics) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	if event.Type != events.TypeTaskStatusChanged {
		return nil
	}

	var record task.Record
	if err := event.UnmarshalPayload(&record); err != nil {
		return err
	}

	m.taskStatusTotal.WithLabelValues(record.Kind, string(record.Status)).Inc()

	// A pending event marks a freshly created task; a terminal event ends
	// it. Intermediate processing events leave the gauge unchanged.
	switch {
	case record.Status == task.StatusPending:
		m.tasksActive.Inc()
	case record.Status.Terminal():
		m.tasksActive.Dec()
		m.recordItemOutcomes(record)
	}
	return nil
}

// recordItemOutcomes counts the per-item results of a finished task.
func (m *Metrics) recordItemOutcomes(record task.Record) {
	for _, result := range record.Results {
		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		m.taskItemsTotal.WithLabelValues(record.Kind, outcome).Inc()
	}
}

// SetWSConnections records the current websocket client count.
func (m *Metrics) SetWSConnections(count int) {
	m.wsConnections.Set(float64(count))
}

// Handler returns the /metrics endpoint handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Ensure Metrics implements events.Handler.
var _ events.Handler = (*Metrics)(nil)
