package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/memory"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStudy(path string) models.Study {
	return study.New(path, "Title "+path, "short", "<p>full</p>", primitive.NewObjectID(), time.Now().UTC())
}

func TestStudies_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := memory.New().Studies()

	created, err := st.Create(ctx, newStudy("go-study"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Version != 0 || created.CreatedAt.IsZero() {
		t.Errorf("unexpected created study: version=%d created_at=%v", created.Version, created.CreatedAt)
	}

	if _, err := st.Create(ctx, newStudy("go-study")); !errors.Is(err, domainerr.ErrConflict) {
		t.Errorf("duplicate path: got %v, want Conflict", err)
	}

	exists, err := st.ExistsByPath(ctx, "go-study")
	if err != nil || !exists {
		t.Errorf("ExistsByPath: got %v, %v; want true, nil", exists, err)
	}

	if _, err := st.GetByPath(ctx, "missing"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("GetByPath missing: got %v, want NotFound", err)
	}
}

func TestStudies_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := memory.New().Studies()
	if _, err := st.Create(ctx, newStudy("copy")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s, err := st.GetByPath(ctx, "copy")
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	study.AddMember(s, primitive.NewObjectID())

	again, err := st.GetByPath(ctx, "copy")
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if again.MemberIDs.Len() != 0 {
		t.Error("mutating a returned study must not change the stored one")
	}
}

func TestStudies_SaveOptimisticLock(t *testing.T) {
	ctx := context.Background()
	st := memory.New().Studies()
	if _, err := st.Create(ctx, newStudy("locked")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, _ := st.GetByPath(ctx, "locked")
	second, _ := st.GetByPath(ctx, "locked")

	first.Title = "first"
	if err := st.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("Version after save: got %d, want 1", first.Version)
	}

	second.Title = "second"
	if err := st.Save(ctx, second); !errors.Is(err, domainerr.ErrConflict) {
		t.Errorf("stale Save: got %v, want Conflict", err)
	}

	stored, _ := st.GetByPath(ctx, "locked")
	if stored.Title != "first" {
		t.Errorf("Title: got %q, want %q", stored.Title, "first")
	}
}

func TestStudies_SavePathTaken(t *testing.T) {
	ctx := context.Background()
	st := memory.New().Studies()
	for _, p := range []string{"one", "two"} {
		if _, err := st.Create(ctx, newStudy(p)); err != nil {
			t.Fatalf("Create %s failed: %v", p, err)
		}
	}

	s, _ := st.GetByPath(ctx, "two")
	s.Path = "one"
	if err := st.Save(ctx, s); !errors.Is(err, domainerr.ErrConflict) {
		t.Errorf("Save onto taken path: got %v, want Conflict", err)
	}
}

func TestStudies_ListPublished(t *testing.T) {
	ctx := context.Background()
	st := memory.New().Studies()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, p := range []string{"old", "new", "draft", "closed"} {
		s := newStudy(p)
		if p != "draft" {
			if err := study.Publish(&s, base.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("Publish failed: %v", err)
			}
		}
		if p == "closed" {
			if err := study.Close(&s, base.Add(10*time.Hour)); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
		}
		if _, err := st.Create(ctx, s); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := st.ListPublished(ctx, 10)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(got) != 2 || got[0].Path != "new" || got[1].Path != "old" {
		paths := make([]string, len(got))
		for i, s := range got {
			paths[i] = s.Path
		}
		t.Errorf("ListPublished: got %v, want [new old]", paths)
	}
}

func TestAccounts_LookupsAndUniqueness(t *testing.T) {
	ctx := context.Background()
	as := memory.New().Accounts()

	alice, err := as.Create(ctx, models.Account{Nickname: "Alice", Email: " Alice@Example.com "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if alice.Email != "alice@example.com" {
		t.Errorf("Email: got %q, want normalized", alice.Email)
	}

	tests := []struct {
		name  string
		login string
	}{
		{"email", "ALICE@example.com"},
		{"nickname", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := as.GetByLogin(ctx, tt.login)
			if err != nil {
				t.Fatalf("GetByLogin failed: %v", err)
			}
			if got.ID != alice.ID {
				t.Errorf("ID: got %v, want %v", got.ID, alice.ID)
			}
		})
	}

	if _, err := as.Create(ctx, models.Account{Nickname: "ALICE", Email: "other@example.com"}); !errors.Is(err, domainerr.ErrConflict) {
		t.Errorf("duplicate nickname: got %v, want Conflict", err)
	}
	if _, err := as.Create(ctx, models.Account{Nickname: "bob", Email: "alice@example.com"}); !errors.Is(err, domainerr.ErrConflict) {
		t.Errorf("duplicate email: got %v, want Conflict", err)
	}
}

func TestAccounts_FindInterested(t *testing.T) {
	ctx := context.Background()
	as := memory.New().Accounts()
	tag, zone, otherZone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	mk := func(nick string, tags, zones models.IDSet) {
		t.Helper()
		if _, err := as.Create(ctx, models.Account{Nickname: nick, Email: nick + "@example.com", TagIDs: tags, ZoneIDs: zones}); err != nil {
			t.Fatalf("Create %s failed: %v", nick, err)
		}
	}
	mk("both", models.IDSet{tag}, models.IDSet{zone})
	mk("tagonly", models.IDSet{tag}, models.IDSet{otherZone})
	mk("zoneonly", nil, models.IDSet{zone})

	got, err := as.FindInterested(ctx, []primitive.ObjectID{tag}, []primitive.ObjectID{zone})
	if err != nil {
		t.Fatalf("FindInterested failed: %v", err)
	}
	if len(got) != 1 || got[0].Nickname != "both" {
		t.Errorf("FindInterested: got %d accounts, want only 'both'", len(got))
	}
}

func TestTags_FindOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := memory.New().Tags()

	a, err := ts.FindOrCreate(ctx, " spring ")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	b, err := ts.FindOrCreate(ctx, "spring")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("expected the same tag, got %v and %v", a.ID, b.ID)
	}

	all, _ := ts.List(ctx)
	if len(all) != 1 {
		t.Errorf("List: got %d tags, want 1", len(all))
	}
	if _, err := ts.FindByTitle(ctx, "java"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("FindByTitle missing: got %v, want NotFound", err)
	}
}

func TestTags_FindOrCreateRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	ts := memory.New().Tags()

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := ts.FindOrCreate(ctx, title); !errors.Is(err, domainerr.ErrInvalid) {
			t.Errorf("FindOrCreate(%q): got %v, want %v", title, err, domainerr.ErrInvalid)
		}
	}
	if all, _ := ts.List(ctx); len(all) != 0 {
		t.Errorf("List: got %d tags, want 0", len(all))
	}
}

func TestZones_FindByCityAndProvince(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	seoul := m.PutZone(models.Zone{City: "Seoul", LocalNameOfCity: "서울특별시", Province: "none"})

	got, err := m.Zones().FindByCityAndProvince(ctx, "Seoul", "none")
	if err != nil {
		t.Fatalf("FindByCityAndProvince failed: %v", err)
	}
	if got.ID != seoul.ID {
		t.Errorf("ID: got %v, want %v", got.ID, seoul.ID)
	}
	if _, err := m.Zones().FindByCityAndProvince(ctx, "Seoul", "Gyeonggi"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("unknown zone: got %v, want NotFound", err)
	}
}

func TestEvents_ListByStudyOrdersByStart(t *testing.T) {
	ctx := context.Background()
	es := memory.New().Events()
	studyID, otherID := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, e := range []models.Event{
		{StudyID: studyID, Title: "third", StartAt: base.Add(72 * time.Hour)},
		{StudyID: studyID, Title: "first", StartAt: base.Add(24 * time.Hour)},
		{StudyID: otherID, Title: "elsewhere", StartAt: base},
		{StudyID: studyID, Title: "second", StartAt: base.Add(48 * time.Hour)},
	} {
		if _, err := es.Create(ctx, e); err != nil {
			t.Fatalf("Create %s: %v", e.Title, err)
		}
	}

	got, err := es.ListByStudy(ctx, studyID)
	if err != nil {
		t.Fatalf("ListByStudy failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Title != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, e.Title, want[i])
		}
		if e.ID.IsZero() || e.CreatedAt.IsZero() {
			t.Errorf("[%d]: expected ID and CreatedAt to be set", i)
		}
	}

	if none, _ := es.ListByStudy(ctx, primitive.NewObjectID()); len(none) != 0 {
		t.Errorf("unknown study: got %d events, want 0", len(none))
	}
}
