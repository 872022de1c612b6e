package worker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry          *prometheus.Registry
	tasksTotal        *prometheus.CounterVec
	taskDuration      *prometheus.HistogramVec
	activeTasks       prometheus.Gauge
	webhooksDelivered *prometheus.CounterVec
	cvBytesArchived   prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecms_worker_tasks_total",
			Help: "Total worker tasks by type and outcome.",
		}, []string{"task", "outcome"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitecms_worker_task_duration_seconds",
			Help:    "Processing duration for each worker task.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task", "outcome"}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitecms_worker_active_tasks",
			Help: "Tasks currently being processed by the worker.",
		}),
		webhooksDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecms_worker_webhooks_total",
			Help: "Submission webhooks by kind and delivery result.",
		}, []string{"kind", "result"}),
		cvBytesArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitecms_worker_cv_bytes_archived_total",
			Help: "Bytes of CV attachments copied to object storage.",
		}),
	}

	registry.MustRegister(
		m.tasksTotal,
		m.taskDuration,
		m.activeTasks,
		m.webhooksDelivered,
		m.cvBytesArchived,
	)
	return m
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
