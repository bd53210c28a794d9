package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAccount inserts a verified account whose email is nickname@test.com.
func (f *Fixtures) CreateAccount(ctx context.Context, nickname string) models.Account {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Account{
		ID:            primitive.NewObjectID(),
		Nickname:      nickname,
		NicknameCI:    text.Fold(nickname),
		Email:         text.Fold(nickname) + "@test.com",
		EmailVerified: true,
		JoinedAt:      &now,
		TagIDs:        models.IDSet{},
		ZoneIDs:       models.IDSet{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("accounts").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return a
}

// CreateStudy inserts a draft study at path managed by manager.
func (f *Fixtures) CreateStudy(ctx context.Context, path string, manager primitive.ObjectID) models.Study {
	f.t.Helper()

	now := time.Now().UTC()
	s := study.New(path, "Study "+path, "short description", "<p>full description</p>", manager, now)
	s.ID = primitive.NewObjectID()
	s.CreatedAt = now
	s.UpdatedAt = now

	if _, err := f.db.Collection("studies").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test study: %v", err)
	}
	return s
}

// CreateTag inserts a tag with the given title.
func (f *Fixtures) CreateTag(ctx context.Context, title string) models.Tag {
	f.t.Helper()

	tag := models.Tag{ID: primitive.NewObjectID(), Title: title}
	if _, err := f.db.Collection("tags").InsertOne(ctx, tag); err != nil {
		f.t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateZone inserts a zone.
func (f *Fixtures) CreateZone(ctx context.Context, city, local, province string) models.Zone {
	f.t.Helper()

	z := models.Zone{ID: primitive.NewObjectID(), City: city, LocalNameOfCity: local, Province: province}
	if _, err := f.db.Collection("zones").InsertOne(ctx, z); err != nil {
		f.t.Fatalf("failed to create test zone: %v", err)
	}
	return z
}
