package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks workflow transitions and HTTP traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration prometheus.Histogram
	RecordsCreated     *prometheus.CounterVec
	NotificationsTotal prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
}

// New registers all metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swenshares_transitions_total",
			Help: "Workflow transitions by record kind, target state and outcome",
		}, []string{"kind", "target", "outcome"}),
		TransitionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "swenshares_transition_duration_seconds",
			Help:    "Duration of Transition operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RecordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swenshares_records_created_total",
			Help: "Registry records created by kind",
		}, []string{"kind"}),
		NotificationsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "swenshares_notifications_created_total",
			Help: "In-app notifications created",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swenshares_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
	}
}

// ObserveTransition records one transition attempt.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(kind, target, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(kind, target, outcome).Inc()
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}

// IncrementRecordCreated records a successful record creation
func (m *Metrics) IncrementRecordCreated(kind string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementNotification records a created notification
func (m *Metrics) IncrementNotification() {
	if m == nil {
		return
	}
	m.NotificationsTotal.Inc()
}

// ObserveHTTP records a served request
func (m *Metrics) ObserveHTTP(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}
