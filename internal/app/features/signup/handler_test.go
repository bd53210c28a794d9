package signup_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/features/signup"
	"github.com/dalemusser/studyhub/internal/app/store/memory"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/mailer"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	mem     *memory.Store
	mail    *mailer.Recorder
	metrics *metrics.Metrics
	router  chi.Router
	now     time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{mem: memory.New(), mail: mailer.NewRecorder(nil), metrics: metrics.New(), now: t0}
	sm := testutil.NewSessionManager(t)
	h := signup.NewHandler(e.mem.Directory(), sm, e.mail, workers.Inline{}, e.metrics,
		"http://localhost:8080/", "StudyHub", zap.NewNop())
	h.Now = func() time.Time { return e.now }

	e.router = chi.NewRouter()
	h.MountRoutes(e.router, sm)
	return e
}

func (e *env) serve(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) signUp(t *testing.T, nickname, email string) *models.Account {
	t.Helper()
	rec := e.serve(testutil.NewJSONRequest(http.MethodPost, "/sign-up", map[string]string{
		"nickname": nickname,
		"email":    email,
		"password": "correct-horse",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	a, err := e.mem.Accounts().GetByNickname(context.Background(), nickname)
	if err != nil {
		t.Fatalf("GetByNickname: %v", err)
	}
	return a
}

func checkURL(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return "/check-email-token?" + q.Encode()
}

func TestSignUp(t *testing.T) {
	e := newEnv(t)
	a := e.signUp(t, "gopher", "Gopher@Example.com")

	if a.Email != "gopher@example.com" {
		t.Errorf("email: got %q, want lowercase", a.Email)
	}
	if a.PasswordHash == "correct-horse" || !authutil.CheckPassword("correct-horse", a.PasswordHash) {
		t.Error("password must be stored as a bcrypt hash")
	}
	if a.EmailVerified || a.EmailCheckToken == "" {
		t.Errorf("new account: verified=%v token=%q", a.EmailVerified, a.EmailCheckToken)
	}
	if !a.StudyCreatedByEmail || !a.StudyUpdatedByEmail {
		t.Error("new accounts opt in to study notices")
	}

	sent := e.mail.Sent()
	if len(sent) != 1 {
		t.Fatalf("mails: got %d, want 1", len(sent))
	}
	if sent[0].To != a.Email {
		t.Errorf("mail to: got %q, want %q", sent[0].To, a.Email)
	}
	if !strings.Contains(sent[0].TextBody, "http://localhost:8080/check-email-token?") ||
		!strings.Contains(sent[0].TextBody, a.EmailCheckToken) {
		t.Errorf("mail body missing confirm link: %s", sent[0].TextBody)
	}

	if got := promtest.ToFloat64(e.metrics.SignupCounter()); got != 1 {
		t.Errorf("signup metric: got %v, want 1", got)
	}
}

func TestSignUp_SetsSessionCookie(t *testing.T) {
	e := newEnv(t)
	rec := e.serve(testutil.NewJSONRequest(http.MethodPost, "/sign-up", map[string]string{
		"nickname": "gopher",
		"email":    "gopher@example.com",
		"password": "correct-horse",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	if len(rec.Result().Cookies()) == 0 {
		t.Error("sign-up should sign the account in")
	}
}

func TestSignUp_Rejects(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, "taken", "taken@example.com")

	tests := []struct {
		name     string
		nickname string
		email    string
		password string
	}{
		{"bad nickname", "Not Valid", "a@example.com", "correct-horse"},
		{"bad email", "fresh", "not-an-email", "correct-horse"},
		{"short password", "fresh", "a@example.com", "short"},
		{"common password", "fresh", "a@example.com", "password1"},
		{"nickname taken", "taken", "other@example.com", "correct-horse"},
		{"email taken", "fresh", "TAKEN@example.com", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.serve(testutil.NewJSONRequest(http.MethodPost, "/sign-up", map[string]string{
				"nickname": tt.nickname,
				"email":    tt.email,
				"password": tt.password,
			}))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestCheckEmailToken(t *testing.T) {
	e := newEnv(t)
	a := e.signUp(t, "gopher", "gopher@example.com")

	e.serve(testutil.NewRequest(http.MethodGet, checkURL("wrong", a.Email))).AssertStatus(t, http.StatusBadRequest)
	e.serve(testutil.NewRequest(http.MethodGet, checkURL(a.EmailCheckToken, "nobody@example.com"))).AssertStatus(t, http.StatusBadRequest)

	rec := e.serve(testutil.NewRequest(http.MethodGet, checkURL(a.EmailCheckToken, a.Email)))
	rec.AssertStatus(t, http.StatusOK)
	var view signup.AccountView
	rec.Envelope(t, &view)
	if !view.EmailVerified {
		t.Error("response should report the e-mail as verified")
	}

	got, err := e.mem.Accounts().GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.EmailVerified || got.JoinedAt == nil || !got.JoinedAt.Equal(t0) {
		t.Errorf("after confirm: verified=%v joinedAt=%v", got.EmailVerified, got.JoinedAt)
	}

	e.serve(testutil.NewRequest(http.MethodGet, checkURL(a.EmailCheckToken, a.Email))).
		AssertStatus(t, http.StatusBadRequest)
}

func TestResendConfirmEmail(t *testing.T) {
	e := newEnv(t)
	a := e.signUp(t, "gopher", "gopher@example.com")
	user := testutil.UserFor(*a)

	resend := func() *testutil.ResponseRecorder {
		return e.serve(testutil.NewAuthenticatedRequest(http.MethodPost, "/resend-confirm-email", user))
	}

	e.now = t0.Add(10 * time.Minute)
	resend().AssertStatus(t, http.StatusTooManyRequests)

	e.now = t0.Add(61 * time.Minute)
	resend().AssertStatus(t, http.StatusOK)
	if n := len(e.mail.Sent()); n != 2 {
		t.Errorf("mails: got %d, want 2", n)
	}
	fresh, err := e.mem.Accounts().GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fresh.EmailCheckToken == a.EmailCheckToken {
		t.Error("resend should issue a new token")
	}

	e.serve(testutil.NewRequest(http.MethodGet, checkURL(fresh.EmailCheckToken, a.Email))).AssertStatus(t, http.StatusOK)
	e.now = t0.Add(3 * time.Hour)
	resend().AssertStatus(t, http.StatusConflict)
}

func TestResendConfirmEmail_RequiresSignIn(t *testing.T) {
	e := newEnv(t)
	e.serve(testutil.NewRequest(http.MethodPost, "/resend-confirm-email")).AssertStatus(t, http.StatusUnauthorized)
}
