// internal/domain/study/lifecycle.go
package study

import (
	"time"

	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecruitingCooldown is the minimum time between two recruiting toggles.
const RecruitingCooldown = time.Hour

// State is the lifecycle position of a study, derived from its flags.
type State int

const (
	Draft State = iota
	PublishedNotRecruiting
	PublishedRecruiting
	Closed
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case PublishedNotRecruiting:
		return "published"
	case PublishedRecruiting:
		return "recruiting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateOf derives the lifecycle state from the study flags.
func StateOf(s *models.Study) State {
	switch {
	case s.Closed:
		return Closed
	case s.Published && s.Recruiting:
		return PublishedRecruiting
	case s.Published:
		return PublishedNotRecruiting
	default:
		return Draft
	}
}

// New returns an unpublished study with creator as its only manager.
func New(path, title, shortDescription, fullDescription string, creator primitive.ObjectID, now time.Time) models.Study {
	s := models.Study{
		ID:               primitive.NewObjectID(),
		Path:             path,
		Title:            title,
		ShortDescription: shortDescription,
		FullDescription:  fullDescription,
		ManagerIDs:       models.IDSet{},
		MemberIDs:        models.IDSet{},
		TagIDs:           models.IDSet{},
		ZoneIDs:          models.IDSet{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	AddManager(&s, creator)
	return s
}

// Publish moves a draft study to published. Published and closed studies
// cannot be published again.
func Publish(s *models.Study, now time.Time) error {
	if s.Published || s.Closed {
		return domainerr.InvalidTransition("publish", "study is already published or closed")
	}
	s.Published = true
	s.PublishedAt = &now
	return nil
}

// Close ends a published study for good. Recruiting is switched off so a
// closed study never reports itself as recruiting.
func Close(s *models.Study, now time.Time) error {
	if !s.Published || s.Closed {
		return domainerr.InvalidTransition("close", "study is not published or is already closed")
	}
	s.Closed = true
	s.ClosedAt = &now
	s.Recruiting = false
	return nil
}

// CanUpdateRecruiting reports whether the recruiting flag may be toggled at
// now: the study is published and the last toggle, if any, happened more
// than RecruitingCooldown ago.
func CanUpdateRecruiting(s *models.Study, now time.Time) bool {
	if !s.Published {
		return false
	}
	if s.RecruitingUpdatedAt == nil {
		return true
	}
	return s.RecruitingUpdatedAt.Before(now.Add(-RecruitingCooldown))
}

// NextRecruitingUpdate returns the earliest instant after which the
// recruiting flag may be toggled again. The zero time means "now".
func NextRecruitingUpdate(s *models.Study) time.Time {
	if s.RecruitingUpdatedAt == nil {
		return time.Time{}
	}
	return s.RecruitingUpdatedAt.Add(RecruitingCooldown)
}

// StartRecruit opens the study to new members.
func StartRecruit(s *models.Study, now time.Time) error {
	return setRecruiting(s, true, now, "start recruit")
}

// StopRecruit stops accepting new members.
func StopRecruit(s *models.Study, now time.Time) error {
	return setRecruiting(s, false, now, "stop recruit")
}

// setRecruiting re-checks the guards even though callers are expected to
// call CanUpdateRecruiting first.
func setRecruiting(s *models.Study, on bool, now time.Time, op string) error {
	if !s.Published || s.Closed {
		return domainerr.InvalidTransition(op, "study is not published or is already closed")
	}
	if !CanUpdateRecruiting(s, now) {
		return domainerr.RateLimit(op, "recruiting was changed less than an hour ago")
	}
	s.Recruiting = on
	s.RecruitingUpdatedAt = &now
	return nil
}

// IsRemovable reports whether the study may still be deleted.
func IsRemovable(s *models.Study) bool {
	return !s.Published
}
