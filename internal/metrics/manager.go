// Package metrics holds the Prometheus instruments of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests         *prometheus.CounterVec
	CounterWorkoutsRecorded prometheus.Counter
	CounterWorkoutsImported prometheus.Counter
	CounterRecordsDetected  *prometheus.CounterVec

	// gauges
	GaugePendingRecords prometheus.Gauge
	GaugeWorkouts       prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistUpdateDuration  prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "route", "status"})
	counterWorkoutsRecorded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_recorded_total",
		Help:      "The total number of finished workouts recorded",
	})
	counterWorkoutsImported := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_imported_total",
		Help:      "The total number of workouts saved by imports",
	})
	counterRecordsDetected := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_detected_total",
		Help:      "The total number of new personal records, by kind",
	}, []string{"kind"})

	gaugePending := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pending_records",
		Help:      "Personal records awaiting acknowledgement",
	})
	gaugeWorkouts := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "history_workouts",
		Help:      "Workouts in the history used by the last update",
	})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
		},
		[]string{"route"},
	)
	histUpdateDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
			Name:      "update_duration_seconds",
			Help:      "Duration of a full analytics rebuild in seconds",
		},
	)

	return &Manager{
		CounterRequests:         counterRequests,
		CounterWorkoutsRecorded: counterWorkoutsRecorded,
		CounterWorkoutsImported: counterWorkoutsImported,
		CounterRecordsDetected:  counterRecordsDetected,
		GaugePendingRecords:     gaugePending,
		GaugeWorkouts:           gaugeWorkouts,
		HistRequestDuration:     histReqDuration,
		HistUpdateDuration:      histUpdateDuration,
	}
}
