package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records credential-lifecycle outcomes.
type AuthMetrics struct {
	hashDuration *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	lockouts     prometheus.Counter
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	hashDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "password_hash_duration_seconds",
		Help:    "Duration of password hash/verify operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts partitioned by outcome.",
	}, []string{"outcome"})
	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "account_lockouts_total",
		Help: "Accounts transitioned to locked after repeated failures.",
	})
	reg.MustRegister(hashDuration, logins, lockouts)
	return &AuthMetrics{
		hashDuration: hashDuration,
		logins:       logins,
		lockouts:     lockouts,
	}
}

// ObserveHashDuration records the duration of a hash or verify call.
func (m *AuthMetrics) ObserveHashDuration(operation string, duration time.Duration) {
	if m == nil || m.hashDuration == nil {
		return
	}
	m.hashDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncLogin increments the attempt counter for the given outcome.
func (m *AuthMetrics) IncLogin(outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncLockout counts an account flipped to locked status.
func (m *AuthMetrics) IncLockout() {
	if m == nil || m.lockouts == nil {
		return
	}
	m.lockouts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
