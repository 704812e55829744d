package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
	slotsGenerated  prometheus.Counter
	slotsUnfilled   prometheus.Counter
	substitutions   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_detected_total",
		Help: "Slot conflicts detected, by axis",
	}, []string{"axis"})

	slotsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_slots_generated_total",
		Help: "Slots assigned by the bulk generator",
	})

	slotsUnfilled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_slots_unfilled_total",
		Help: "Slots the bulk generator could not fill",
	})

	substitutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "substitution_transitions_total",
		Help: "Substitution record transitions, by resulting status",
	}, []string{"status"})

	registry.MustRegister(requestDuration, requestTotal, conflictsTotal, slotsGenerated, slotsUnfilled, substitutions)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conflictsTotal:  conflictsTotal,
		slotsGenerated:  slotsGenerated,
		slotsUnfilled:   slotsUnfilled,
		substitutions:   substitutions,
	}
}

// Handler returns the Prometheus scrape handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request's latency and outcome.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveConflicts counts detected conflicts by axis.
func (s *MetricsService) ObserveConflicts(conflicts []models.SlotConflict) {
	for _, c := range conflicts {
		s.conflictsTotal.WithLabelValues(string(c.Axis)).Inc()
	}
}

// ObserveGeneration records one generator run's outcome.
func (s *MetricsService) ObserveGeneration(assigned, unfilled int) {
	s.slotsGenerated.Add(float64(assigned))
	s.slotsUnfilled.Add(float64(unfilled))
}

// ObserveSubstitution counts a record transition by resulting status.
func (s *MetricsService) ObserveSubstitution(status models.SubstitutionStatus) {
	s.substitutions.WithLabelValues(string(status)).Inc()
}
