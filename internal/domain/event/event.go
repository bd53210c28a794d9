// Package event holds the rules for scheduling study meetups.
package event

import (
	"time"

	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft is what a manager submits for a new event.
type Draft struct {
	Title           string
	Description     string
	Type            models.EventType
	Limit           int
	EndEnrollmentAt time.Time
	StartAt         time.Time
	EndAt           time.Time
}

// CheckSchedule requires enrollment to close no earlier than now, the event
// to start no earlier than enrollment closes, and to end no earlier than it
// starts. Equal instants are allowed.
func CheckSchedule(endEnrollment, start, end, now time.Time) error {
	switch {
	case endEnrollment.Before(now):
		return domainerr.Invalidf("create event", "enrollment must close in the future")
	case start.Before(endEnrollment):
		return domainerr.Invalidf("create event", "event must start after enrollment closes")
	case end.Before(start):
		return domainerr.Invalidf("create event", "event must end after it starts")
	}
	return nil
}

// New validates d and builds the event for study s, created by creator at now.
// The caller sanitizes d.Description.
func New(s *models.Study, creator primitive.ObjectID, d Draft, now time.Time) (models.Event, error) {
	if !d.Type.Valid() {
		return models.Event{}, domainerr.Invalidf("create event", "unknown event type %q", d.Type)
	}
	if d.Limit < models.EventMinLimit {
		return models.Event{}, domainerr.Invalidf("create event", "limit must be at least %d", models.EventMinLimit)
	}
	if err := CheckSchedule(d.EndEnrollmentAt, d.StartAt, d.EndAt, now); err != nil {
		return models.Event{}, err
	}
	return models.Event{
		StudyID:         s.ID,
		CreatedBy:       creator,
		Title:           d.Title,
		Description:     d.Description,
		Type:            d.Type,
		Limit:           d.Limit,
		EndEnrollmentAt: d.EndEnrollmentAt.UTC(),
		StartAt:         d.StartAt.UTC(),
		EndAt:           d.EndAt.UTC(),
		CreatedAt:       now,
	}, nil
}
