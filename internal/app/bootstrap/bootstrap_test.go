package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func memoryConfig() AppConfig {
	return AppConfig{
		StoreBackend:      BackendMemory,
		SessionKey:        "bootstrap-test-session-key-0123456789",
		SessionName:       "studyhub-test",
		SessionMaxAge:     time.Hour,
		BaseURL:           "http://localhost:3000",
		MailFromName:      "StudyHub",
		SeedZones:         true,
		LoginIPLimit:      10,
		LoginAccountLimit: 5,
	}
}

func TestValidateConfig(t *testing.T) {
	logger := zap.NewNop()
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"memory ok", dev, func(*AppConfig) {}, false},
		{"unknown backend", dev, func(c *AppConfig) { c.StoreBackend = "redis" }, true},
		{"bad mongo uri", dev, func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = ""
			c.MongoDatabase = "studyhub"
		}, true},
		{"mongo without database", dev, func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
		}, true},
		{"short key in prod", prod, func(c *AppConfig) { c.SessionKey = "short" }, true},
		{"zero login limit", dev, func(c *AppConfig) { c.LoginIPLimit = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, logger)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig: got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLifecycle_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	core := &config.CoreConfig{Env: "dev"}
	cfg := memoryConfig()

	deps, err := ConnectDB(ctx, core, cfg, logger)
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Memory == nil || deps.MongoClient != nil {
		t.Fatal("expected memory backend only")
	}
	if err := EnsureSchema(ctx, core, cfg, deps, logger); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Startup(ctx, core, cfg, deps, logger); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	zones, err := deps.Directory.Zones.List(ctx)
	if err != nil {
		t.Fatalf("List zones: %v", err)
	}
	if len(zones) == 0 {
		t.Error("expected seeded zones")
	}

	h, err := BuildHandler(core, cfg, deps, logger)
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/studies", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/study/nope", http.StatusNotFound},
		{"/study/nope/events", http.StatusNotFound},
		{"/no-such-page", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s: got %d, want %d", tt.path, rec.Code, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/new-study", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /new-study anonymous: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/study/nope/new-event", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /study/nope/new-event anonymous: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := Shutdown(stopCtx, core, cfg, deps, logger); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
