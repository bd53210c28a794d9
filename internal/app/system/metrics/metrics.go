// Package metrics holds the Prometheus collectors for study activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Results for transitions and logins.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected" // invalid state transition
	ResultLimited  = "limited"  // recruiting cooldown
	ResultError    = "error"
	ResultFailed   = "failed" // bad credentials
)

// Metrics is the set of collectors handlers record into.
type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	membership  *prometheus.CounterVec
	signups     prometheus.Counter
	logins      *prometheus.CounterVec
	events      prometheus.Counter
}

// New registers the study collectors plus the Go and process collectors
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "study_transitions_total",
			Help:      "Study lifecycle transitions by kind and result.",
		}, []string{"transition", "result"}),
		membership: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "study_membership_changes_total",
			Help:      "Members joining or leaving studies.",
		}, []string{"change"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "signups_total",
			Help:      "Accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "events_created_total",
			Help:      "Study events scheduled.",
		}),
	}
	reg.MustRegister(
		m.transitions,
		m.membership,
		m.signups,
		m.logins,
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Transition records a lifecycle transition such as "publish" or
// "recruit_start".
func (m *Metrics) Transition(transition, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition, result).Inc()
}

// Membership records "join" or "leave".
func (m *Metrics) Membership(change string) {
	if m == nil {
		return
	}
	m.membership.WithLabelValues(change).Inc()
}

func (m *Metrics) Signup() {
	if m == nil {
		return
	}
	m.signups.Inc()
}

// Login records "ok", "failed" or "limited".
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) EventCreated() {
	if m == nil {
		return
	}
	m.events.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TransitionCounter exposes the vector for tests.
func (m *Metrics) TransitionCounter() *prometheus.CounterVec { return m.transitions }

// MembershipCounter exposes the vector for tests.
func (m *Metrics) MembershipCounter() *prometheus.CounterVec { return m.membership }

// SignupCounter exposes the counter for tests.
func (m *Metrics) SignupCounter() prometheus.Counter { return m.signups }

// LoginCounter exposes the vector for tests.
func (m *Metrics) LoginCounter() *prometheus.CounterVec { return m.logins }

// EventCounter exposes the counter for tests.
func (m *Metrics) EventCounter() prometheus.Counter { return m.events }
