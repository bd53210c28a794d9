// Package directory defines the persistence ports for studies, accounts,
// tags, zones and events, and assembles StudyGraphs with an explicit include set.
//
// Two implementations exist: the Mongo stores under internal/app/store and
// the in-memory store (store/memory) used for local runs and handler tests.
package directory

import (
	"context"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Studies persists Study documents.
//
// Lookups return an error of kind domainerr.NotFound when nothing matches.
// Save is optimistic: it succeeds only if the stored version equals
// s.Version, then increments s.Version. A stale version yields a
// domainerr.Conflict.
type Studies interface {
	Create(ctx context.Context, s models.Study) (models.Study, error)
	ExistsByPath(ctx context.Context, path string) (bool, error)
	GetByPath(ctx context.Context, path string) (*models.Study, error)
	Save(ctx context.Context, s *models.Study) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListPublished(ctx context.Context, limit int) ([]models.Study, error)
}

// Accounts persists Account documents.
type Accounts interface {
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetByNickname(ctx context.Context, nickname string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByLogin accepts either an email address or a nickname.
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	Save(ctx context.Context, a *models.Account) error
	// GetByIDs returns the accounts in the order of ids, skipping unknown ids.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error)
	// FindInterested returns accounts sharing at least one tag AND one zone.
	FindInterested(ctx context.Context, tagIDs, zoneIDs []primitive.ObjectID) ([]models.Account, error)
}

// Tags persists the shared tag vocabulary.
type Tags interface {
	FindOrCreate(ctx context.Context, title string) (models.Tag, error)
	FindByTitle(ctx context.Context, title string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tag, error)
}

// Zones is the read-mostly catalog of regions.
type Zones interface {
	FindByCityAndProvince(ctx context.Context, city, province string) (*models.Zone, error)
	List(ctx context.Context) ([]models.Zone, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Zone, error)
}

// Events persists study meetups.
type Events interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	// ListByStudy returns the study's events by start time, earliest first.
	ListByStudy(ctx context.Context, studyID primitive.ObjectID) ([]models.Event, error)
}

// Include selects which relationships a StudyGraph carries.
type Include uint8

const (
	IncludeTags Include = 1 << iota
	IncludeZones
	IncludeManagers
	IncludeMembers

	IncludeNone Include = 0
	IncludeAll          = IncludeTags | IncludeZones | IncludeManagers | IncludeMembers
)

// Has reports whether every flag in f is set.
func (i Include) Has(f Include) bool { return i&f == f }

// Directory bundles the ports.
type Directory struct {
	Studies  Studies
	Accounts Accounts
	Tags     Tags
	Zones    Zones
	Events   Events
}

// LoadStudy fetches the study at path and resolves the relationships
// selected by inc. Unselected slices stay nil.
func (d Directory) LoadStudy(ctx context.Context, path string, inc Include) (*models.StudyGraph, error) {
	s, err := d.Studies.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	g := &models.StudyGraph{Study: *s}

	if inc.Has(IncludeTags) {
		if g.Tags, err = d.Tags.GetByIDs(ctx, s.TagIDs); err != nil {
			return nil, err
		}
	}
	if inc.Has(IncludeZones) {
		if g.Zones, err = d.Zones.GetByIDs(ctx, s.ZoneIDs); err != nil {
			return nil, err
		}
	}
	if inc.Has(IncludeManagers) {
		if g.Managers, err = d.Accounts.GetByIDs(ctx, s.ManagerIDs); err != nil {
			return nil, err
		}
	}
	if inc.Has(IncludeMembers) {
		if g.Members, err = d.Accounts.GetByIDs(ctx, s.MemberIDs); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Loader fetches a StudyGraph by path with a fixed include set. The named
// profiles below are Loaders.
type Loader func(ctx context.Context, path string) (*models.StudyGraph, error)

// Named loading profiles, one per screen that needs them.

// FindStudy loads everything: the public study page.
func (d Directory) FindStudy(ctx context.Context, path string) (*models.StudyGraph, error) {
	return d.LoadStudy(ctx, path, IncludeAll)
}

// FindStudyWithTags loads tags and managers: the tag settings screen.
func (d Directory) FindStudyWithTags(ctx context.Context, path string) (*models.StudyGraph, error) {
	return d.LoadStudy(ctx, path, IncludeTags|IncludeManagers)
}

// FindStudyWithZones loads zones and managers: the zone settings screen.
func (d Directory) FindStudyWithZones(ctx context.Context, path string) (*models.StudyGraph, error) {
	return d.LoadStudy(ctx, path, IncludeZones|IncludeManagers)
}

// FindStudyWithMembers loads managers and members: the members page.
func (d Directory) FindStudyWithMembers(ctx context.Context, path string) (*models.StudyGraph, error) {
	return d.LoadStudy(ctx, path, IncludeManagers|IncludeMembers)
}

// FindStudyWithManagers loads managers only: settings, lifecycle and
// membership changes.
func (d Directory) FindStudyWithManagers(ctx context.Context, path string) (*models.StudyGraph, error) {
	return d.LoadStudy(ctx, path, IncludeManagers)
}
