package settings_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/features/settings"
	"github.com/dalemusser/studyhub/internal/app/store/memory"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	mem    *memory.Store
	router chi.Router
	user   testutil.TestUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := memory.New()
	sm := testutil.NewSessionManager(t)
	r := chi.NewRouter()
	r.Mount("/settings", settings.Routes(settings.NewHandler(mem.Directory(), sm, zap.NewNop()), sm))

	a, err := mem.Accounts().Create(context.Background(), models.Account{Nickname: "gopher", Email: "gopher@test.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return &env{mem: mem, router: r, user: testutil.UserFor(a)}
}

func (e *env) do(method, target string, body any) *testutil.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(method, target, body)
	} else {
		req = testutil.NewRequest(method, target)
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, e.user))
	return rec
}

func (e *env) account(t *testing.T) *models.Account {
	t.Helper()
	a, err := e.mem.Accounts().GetByID(context.Background(), e.user.ObjectID())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return a
}

func TestSettings_Unauthenticated(t *testing.T) {
	e := newEnv(t)
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/settings/tags"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestTags(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodPost, "/settings/tags/add", map[string]string{"title": "spring"}).AssertStatus(t, http.StatusOK)
	e.do(http.MethodPost, "/settings/tags/add", map[string]string{"title": "spring"}).AssertStatus(t, http.StatusOK)
	if n := e.account(t).TagIDs.Len(); n != 1 {
		t.Errorf("tags: got %d, want 1", n)
	}

	rec := e.do(http.MethodGet, "/settings/tags", nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"tags":["spring"]`)

	e.do(http.MethodPost, "/settings/tags/remove", map[string]string{"title": "jpa"}).AssertStatus(t, http.StatusBadRequest)
	e.do(http.MethodPost, "/settings/tags/remove", map[string]string{"title": "spring"}).AssertStatus(t, http.StatusOK)
	if n := e.account(t).TagIDs.Len(); n != 0 {
		t.Errorf("tags after remove: got %d, want 0", n)
	}
}

func TestZones(t *testing.T) {
	e := newEnv(t)
	busan := e.mem.PutZone(models.Zone{City: "Busan", LocalNameOfCity: "부산", Province: "none"})

	e.do(http.MethodPost, "/settings/zones/add", map[string]string{"city": "Busan", "province": "Gyeonggi"}).
		AssertStatus(t, http.StatusBadRequest)
	e.do(http.MethodPost, "/settings/zones/add", map[string]string{"city": "Busan", "province": "none"}).
		AssertStatus(t, http.StatusOK)
	if !e.account(t).ZoneIDs.Has(busan.ID) {
		t.Fatal("zone should be added")
	}

	rec := e.do(http.MethodGet, "/settings/zones", nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, busan.String())

	e.do(http.MethodPost, "/settings/zones/remove", map[string]string{"city": "Busan", "province": "none"}).
		AssertStatus(t, http.StatusOK)
	if e.account(t).ZoneIDs.Has(busan.ID) {
		t.Error("zone should be removed")
	}
}

func TestNotifications(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodPost, "/settings/notifications", settings.NotificationsView{
		StudyCreatedByEmail: true,
	}).AssertStatus(t, http.StatusOK)

	rec := e.do(http.MethodGet, "/settings/notifications", nil)
	rec.AssertStatus(t, http.StatusOK)
	var got settings.NotificationsView
	rec.Envelope(t, &got)
	if !got.StudyCreatedByEmail || got.StudyUpdatedByEmail {
		t.Errorf("notifications: got %+v, want created only", got)
	}
}

func TestPassword(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name       string
		pw, repeat string
		wantStatus int
	}{
		{"mismatch", "correct-horse", "correct-horsE", http.StatusBadRequest},
		{"too short", "short", "short", http.StatusBadRequest},
		{"ok", "correct-horse", "correct-horse", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.do(http.MethodPost, "/settings/password", map[string]string{
				"new_password":         tt.pw,
				"new_password_confirm": tt.repeat,
			}).AssertStatus(t, tt.wantStatus)
		})
	}

	if !authutil.CheckPassword("correct-horse", e.account(t).PasswordHash) {
		t.Error("password should be updated")
	}
}

func TestNickname(t *testing.T) {
	e := newEnv(t)
	if _, err := e.mem.Accounts().Create(context.Background(), models.Account{Nickname: "taken", Email: "taken@test.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	e.do(http.MethodPost, "/settings/account", map[string]string{"nickname": "taken"}).AssertStatus(t, http.StatusBadRequest)
	e.do(http.MethodPost, "/settings/account", map[string]string{"nickname": "Bad Nick"}).AssertStatus(t, http.StatusBadRequest)

	rec := e.do(http.MethodPost, "/settings/account", map[string]string{"nickname": "고퍼"})
	rec.AssertStatus(t, http.StatusOK)
	if len(rec.Result().Cookies()) == 0 {
		t.Error("nickname change should refresh the session cookie")
	}
	if got := e.account(t).Nickname; got != "고퍼" {
		t.Errorf("nickname: got %q, want 고퍼", got)
	}
}
