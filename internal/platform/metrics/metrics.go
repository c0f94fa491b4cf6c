package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medcamp/medcamp/internal/platform/apperr"
)

// Metrics holds the Prometheus collectors of the server.
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestDuration      *prometheus.HistogramVec
	RegistrationsCreated prometheus.Counter
	IntakeFailures       *prometheus.CounterVec
	ExamsRecorded        *prometheus.CounterVec
	LoginAttempts        *prometheus.CounterVec
}

// New registers every collector with reg. Pass prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medcamp_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		RegistrationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "medcamp_registrations_created_total",
			Help: "Registrations committed by the intake transaction",
		}),
		IntakeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "medcamp_intake_failures_total",
			Help: "Rejected or rolled back registration submissions",
		}, []string{"reason"}), // reason: "validation", "persistence"
		ExamsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "medcamp_doctor_exams_total",
			Help: "Doctor exams accepted, by storage mode",
		}, []string{"mode"}), // mode: "stored", "echo"
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "medcamp_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncRegistrationCreated() {
	if m != nil {
		m.RegistrationsCreated.Inc()
	}
}

func (m *Metrics) IncIntakeFailure(reason string) {
	if m != nil {
		m.IntakeFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncExam(mode string) {
	if m != nil {
		m.ExamsRecorded.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

// Middleware observes request latency labelled by the route template, so
// /api/registrations/:id stays one series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = apperr.Status(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
