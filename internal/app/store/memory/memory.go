// Package memory provides an in-memory implementation of the directory
// ports used for tests and ephemeral environments (store_backend=memory).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time contract assertions.
var (
	_ directory.Studies  = (*Studies)(nil)
	_ directory.Accounts = (*Accounts)(nil)
	_ directory.Tags     = (*Tags)(nil)
	_ directory.Zones    = (*Zones)(nil)
	_ directory.Events   = (*Events)(nil)
)

// Store holds every collection behind one mutex. Values are copied on the
// way in and out so callers never share slices with the store.
type Store struct {
	mu       sync.RWMutex
	studies  map[primitive.ObjectID]models.Study
	accounts map[primitive.ObjectID]models.Account
	tags     map[primitive.ObjectID]models.Tag
	zones    map[primitive.ObjectID]models.Zone
	events   map[primitive.ObjectID]models.Event
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		studies:  make(map[primitive.ObjectID]models.Study),
		accounts: make(map[primitive.ObjectID]models.Account),
		tags:     make(map[primitive.ObjectID]models.Tag),
		zones:    make(map[primitive.ObjectID]models.Zone),
		events:   make(map[primitive.ObjectID]models.Event),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Directory exposes the store through the directory ports.
func (m *Store) Directory() directory.Directory {
	return directory.Directory{
		Studies:  m.Studies(),
		Accounts: m.Accounts(),
		Tags:     m.Tags(),
		Zones:    m.Zones(),
		Events:   m.Events(),
	}
}

func (m *Store) Studies() *Studies   { return (*Studies)(m) }
func (m *Store) Accounts() *Accounts { return (*Accounts)(m) }
func (m *Store) Tags() *Tags         { return (*Tags)(m) }
func (m *Store) Zones() *Zones       { return (*Zones)(m) }
func (m *Store) Events() *Events     { return (*Events)(m) }

// PutZone inserts or replaces a zone. Zones are a seeded catalog; this is
// the memory counterpart of zonestore.SeedIfEmpty.
func (m *Store) PutZone(z models.Zone) models.Zone {
	m.mu.Lock()
	defer m.mu.Unlock()
	if z.ID.IsZero() {
		z.ID = primitive.NewObjectID()
	}
	m.zones[z.ID] = z
	return z
}

/*─────────────────────────────────────────────────────────────────────────────*
| Studies                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type Studies Store

func cloneStudy(s models.Study) models.Study {
	s.ManagerIDs = s.ManagerIDs.Clone()
	s.MemberIDs = s.MemberIDs.Clone()
	s.TagIDs = s.TagIDs.Clone()
	s.ZoneIDs = s.ZoneIDs.Clone()
	s.PublishedAt = cloneTime(s.PublishedAt)
	s.ClosedAt = cloneTime(s.ClosedAt)
	s.RecruitingUpdatedAt = cloneTime(s.RecruitingUpdatedAt)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (st *Studies) findByPath(path string) (models.Study, bool) {
	for _, s := range st.studies {
		if s.Path == path {
			return s, true
		}
	}
	return models.Study{}, false
}

func (st *Studies) Create(_ context.Context, s models.Study) (models.Study, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.findByPath(s.Path); ok {
		return models.Study{}, domainerr.Conflictf("create study", "path %q is taken", s.Path)
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	now := st.now()
	s.CreatedAt, s.UpdatedAt = now, now
	s.Version = 0
	s.MemberCount = s.MemberIDs.Len()
	st.studies[s.ID] = cloneStudy(s)
	return s, nil
}

func (st *Studies) ExistsByPath(_ context.Context, path string) (bool, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.findByPath(path)
	return ok, nil
}

func (st *Studies) GetByPath(_ context.Context, path string) (*models.Study, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.findByPath(path)
	if !ok {
		return nil, domainerr.NotFoundf("study", path)
	}
	out := cloneStudy(s)
	return &out, nil
}

func (st *Studies) Save(_ context.Context, s *models.Study) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.studies[s.ID]
	if !ok {
		return domainerr.NotFoundf("study", s.Path)
	}
	if cur.Version != s.Version {
		return domainerr.Conflictf("save study", "study %q was modified concurrently (version %d, have %d)",
			s.Path, cur.Version, s.Version)
	}
	if other, taken := st.findByPath(s.Path); taken && other.ID != s.ID {
		return domainerr.Conflictf("save study", "path %q is taken", s.Path)
	}
	s.Version++
	s.UpdatedAt = st.now()
	s.MemberCount = s.MemberIDs.Len()
	st.studies[s.ID] = cloneStudy(*s)
	return nil
}

func (st *Studies) Delete(_ context.Context, id primitive.ObjectID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.studies[id]; !ok {
		return domainerr.NotFoundf("study", id.Hex())
	}
	delete(st.studies, id)
	return nil
}

func (st *Studies) ListPublished(_ context.Context, limit int) ([]models.Study, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]models.Study, 0)
	for _, s := range st.studies {
		if s.Published && !s.Closed {
			out = append(out, cloneStudy(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return publishedAt(out[i]).After(publishedAt(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func publishedAt(s models.Study) time.Time {
	if s.PublishedAt == nil {
		return time.Time{}
	}
	return *s.PublishedAt
}

/*─────────────────────────────────────────────────────────────────────────────*
| Accounts                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type Accounts Store

func cloneAccount(a models.Account) models.Account {
	a.TagIDs = a.TagIDs.Clone()
	a.ZoneIDs = a.ZoneIDs.Clone()
	a.EmailCheckTokenGeneratedAt = cloneTime(a.EmailCheckTokenGeneratedAt)
	a.JoinedAt = cloneTime(a.JoinedAt)
	return a
}

func (as *Accounts) find(match func(models.Account) bool) (*models.Account, bool) {
	for _, a := range as.accounts {
		if match(a) {
			out := cloneAccount(a)
			return &out, true
		}
	}
	return nil, false
}

func (as *Accounts) conflict(a models.Account) error {
	for _, other := range as.accounts {
		if other.ID == a.ID {
			continue
		}
		if other.Email == a.Email {
			return domainerr.Conflictf("save account", "email %q is taken", a.Email)
		}
		if other.NicknameCI == a.NicknameCI {
			return domainerr.Conflictf("save account", "nickname %q is taken", a.Nickname)
		}
	}
	return nil
}

func (as *Accounts) Create(_ context.Context, a models.Account) (models.Account, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.Email = normalize.Email(a.Email)
	a.NicknameCI = normalize.NicknameCI(a.Nickname)
	if err := as.conflict(a); err != nil {
		return models.Account{}, err
	}
	now := as.now()
	a.CreatedAt, a.UpdatedAt = now, now
	as.accounts[a.ID] = cloneAccount(a)
	return a, nil
}

func (as *Accounts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	a, ok := as.accounts[id]
	if !ok {
		return nil, domainerr.NotFoundf("account", id.Hex())
	}
	out := cloneAccount(a)
	return &out, nil
}

func (as *Accounts) GetByNickname(_ context.Context, nickname string) (*models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	ci := normalize.NicknameCI(nickname)
	if a, ok := as.find(func(a models.Account) bool { return a.NicknameCI == ci }); ok {
		return a, nil
	}
	return nil, domainerr.NotFoundf("account", nickname)
}

func (as *Accounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	e := normalize.Email(email)
	if a, ok := as.find(func(a models.Account) bool { return a.Email == e }); ok {
		return a, nil
	}
	return nil, domainerr.NotFoundf("account", email)
}

func (as *Accounts) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	if strings.Contains(login, "@") {
		return as.GetByEmail(ctx, login)
	}
	return as.GetByNickname(ctx, login)
}

func (as *Accounts) Save(_ context.Context, a *models.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	if _, ok := as.accounts[a.ID]; !ok {
		return domainerr.NotFoundf("account", a.ID.Hex())
	}
	a.Email = normalize.Email(a.Email)
	a.NicknameCI = normalize.NicknameCI(a.Nickname)
	if err := as.conflict(*a); err != nil {
		return err
	}
	a.UpdatedAt = as.now()
	as.accounts[a.ID] = cloneAccount(*a)
	return nil
}

func (as *Accounts) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]models.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := as.accounts[id]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (as *Accounts) FindInterested(_ context.Context, tagIDs, zoneIDs []primitive.ObjectID) ([]models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]models.Account, 0)
	for _, a := range as.accounts {
		if overlaps(a.TagIDs, tagIDs) && overlaps(a.ZoneIDs, zoneIDs) {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NicknameCI < out[j].NicknameCI })
	return out, nil
}

func overlaps(set models.IDSet, ids []primitive.ObjectID) bool {
	for _, id := range ids {
		if set.Has(id) {
			return true
		}
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tags                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type Tags Store

func (ts *Tags) byTitle(title string) (models.Tag, bool) {
	for _, t := range ts.tags {
		if t.Title == title {
			return t, true
		}
	}
	return models.Tag{}, false
}

func (ts *Tags) FindOrCreate(_ context.Context, title string) (models.Tag, error) {
	title = normalize.TagTitle(title)
	if title == "" {
		return models.Tag{}, domainerr.Invalidf("find or create tag", "tag title is empty")
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.byTitle(title); ok {
		return t, nil
	}
	t := models.Tag{ID: primitive.NewObjectID(), Title: title}
	ts.tags[t.ID] = t
	return t, nil
}

func (ts *Tags) FindByTitle(_ context.Context, title string) (*models.Tag, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if t, ok := ts.byTitle(normalize.TagTitle(title)); ok {
		return &t, nil
	}
	return nil, domainerr.NotFoundf("tag", title)
}

func (ts *Tags) List(_ context.Context) ([]models.Tag, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]models.Tag, 0, len(ts.tags))
	for _, t := range ts.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (ts *Tags) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Tag, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := ts.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Zones                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type Zones Store

func (zs *Zones) FindByCityAndProvince(_ context.Context, city, province string) (*models.Zone, error) {
	zs.mu.RLock()
	defer zs.mu.RUnlock()
	for _, z := range zs.zones {
		if z.City == city && z.Province == province {
			return &z, nil
		}
	}
	return nil, domainerr.NotFoundf("zone", city+"/"+province)
}

func (zs *Zones) List(_ context.Context) ([]models.Zone, error) {
	zs.mu.RLock()
	defer zs.mu.RUnlock()
	out := make([]models.Zone, 0, len(zs.zones))
	for _, z := range zs.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Province < out[j].Province
	})
	return out, nil
}

func (zs *Zones) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Zone, error) {
	zs.mu.RLock()
	defer zs.mu.RUnlock()
	out := make([]models.Zone, 0, len(ids))
	for _, id := range ids {
		if z, ok := zs.zones[id]; ok {
			out = append(out, z)
		}
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Events                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type Events Store

func (es *Events) Create(_ context.Context, e models.Event) (models.Event, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = es.now()
	}
	es.events[e.ID] = e
	return e, nil
}

// ListByStudy orders by start time, then by ID, matching the Mongo sort.
func (es *Events) ListByStudy(_ context.Context, studyID primitive.ObjectID) ([]models.Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	out := make([]models.Event, 0)
	for _, e := range es.events {
		if e.StudyID == studyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}
