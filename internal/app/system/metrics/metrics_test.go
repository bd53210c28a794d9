package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTransition(t *testing.T) {
	m := metrics.New()
	m.Transition("publish", metrics.ResultOK)
	m.Transition("publish", metrics.ResultOK)
	m.Transition("recruit_start", metrics.ResultLimited)

	if got := testutil.ToFloat64(m.TransitionCounter().WithLabelValues("publish", metrics.ResultOK)); got != 2 {
		t.Errorf("publish ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransitionCounter().WithLabelValues("recruit_start", metrics.ResultLimited)); got != 1 {
		t.Errorf("recruit_start limited: got %v, want 1", got)
	}
}

func TestMembership(t *testing.T) {
	m := metrics.New()
	m.Membership("join")
	if got := testutil.ToFloat64(m.MembershipCounter().WithLabelValues("join")); got != 1 {
		t.Errorf("join: got %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.Transition("publish", metrics.ResultOK)
	m.Membership("join")
	m.Signup()
	m.Login("ok")
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.Signup()
	m.Login("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"studyhub_signups_total 1", `studyhub_logins_total{result="failed"} 1`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
