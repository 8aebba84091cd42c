package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты запроса удержания слота
const (
	HoldGranted   = "granted"
	HoldRefreshed = "refreshed"
	HoldConflict  = "conflict"
)

// Причины снятия удержания
const (
	ReleaseExplicit      = "explicit"
	ReleaseDisconnect    = "disconnect"
	ReleaseBookingFailed = "booking_failed"
	ReleaseBooked        = "booked"
	ReleaseExpired       = "expired"
)

// Результаты бронирования
const (
	BookingSuccess  = "success"
	BookingRejected = "rejected"
	BookingError    = "error"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы-хелперы безопасно вызывать на nil (метрики выключены).
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge

	HoldsActive       prometheus.Gauge
	HoldRequestsTotal *prometheus.CounterVec
	HoldReleasesTotal *prometheus.CounterVec
	BookingsTotal     *prometheus.CounterVec

	RealtimeConnections   prometheus.Gauge
	RealtimeEventsDropped prometheus.Counter

	EventsPublished *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registerer (отдельный registry в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established database connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: labels,
		}),

		HoldsActive: f.NewGauge(prometheus.GaugeOpts{
			Name:        "slot_holds_active",
			Help:        "Number of live (unexpired) slot holds",
			ConstLabels: labels,
		}),
		HoldRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_hold_requests_total",
			Help:        "Slot hold requests by result",
			ConstLabels: labels,
		}, []string{"result"}),
		HoldReleasesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_hold_releases_total",
			Help:        "Slot holds removed by reason",
			ConstLabels: labels,
		}, []string{"reason"}),
		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "test_drive_bookings_total",
			Help:        "Test drive booking attempts by result",
			ConstLabels: labels,
		}, []string{"result"}),

		RealtimeConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "realtime_connections",
			Help:        "Number of open realtime connections",
			ConstLabels: labels,
		}),
		RealtimeEventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name:        "realtime_events_dropped_total",
			Help:        "Slot events dropped because a client send buffer was full",
			ConstLabels: labels,
		}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Domain events published to the broker",
			ConstLabels: labels,
		}, []string{"routing_key", "result"}),
	}
}

func (m *Metrics) ObserveHoldRequest(result string) {
	if m == nil {
		return
	}
	m.HoldRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHoldRelease(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.HoldReleasesTotal.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) SetActiveHolds(n int) {
	if m == nil {
		return
	}
	m.HoldsActive.Set(float64(n))
}

func (m *Metrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.RealtimeConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.RealtimeConnections.Dec()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.RealtimeEventsDropped.Inc()
}

func (m *Metrics) ObservePublish(routingKey string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(routingKey, result).Inc()
}
