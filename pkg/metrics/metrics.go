package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks wizard progress, submissions and post-registration activity.
type Metrics struct {
	SessionsStarted  *prometheus.CounterVec
	StepSubmissions  *prometheus.CounterVec
	Registrations    *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
	AgentLookups     *prometheus.CounterVec
	Payments         *prometheus.CounterVec
	SideEffectErrors *prometheus.CounterVec
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_wizard_sessions_started_total",
			Help: "Wizard sessions started, by entry mode",
		}, []string{"mode"}),
		StepSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_wizard_step_submissions_total",
			Help: "Step submissions, by step and outcome",
		}, []string{"step", "outcome"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_registrations_total",
			Help: "Registration submissions to the backend, by outcome",
		}, []string{"outcome"}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "firstcare_registration_submit_duration_seconds",
			Help:    "Duration of the register and photo upload calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AgentLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_agent_lookups_total",
			Help: "Agent code lookups, by result",
		}, []string{"status"}),
		Payments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_payments_total",
			Help: "Payments recorded, by type",
		}, []string{"type"}),
		SideEffectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firstcare_side_effect_errors_total",
			Help: "Failures of non-fatal work after a registration or payment",
		}, []string{"effect"}),
	}
}

func (m *Metrics) IncSessionStarted(mode string) {
	m.SessionsStarted.WithLabelValues(mode).Inc()
}

func (m *Metrics) IncStep(step string, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.StepSubmissions.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) IncRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveSubmit records the duration of a submission. Call with time.Now() at
// the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncAgentLookup(status string) {
	m.AgentLookups.WithLabelValues(status).Inc()
}

func (m *Metrics) IncPayment(paymentType string) {
	m.Payments.WithLabelValues(paymentType).Inc()
}

func (m *Metrics) IncSideEffectError(effect string) {
	m.SideEffectErrors.WithLabelValues(effect).Inc()
}
