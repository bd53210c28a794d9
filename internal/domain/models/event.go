// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType decides how enrollments are accepted.
type EventType string

const (
	// EventFCFS accepts enrollments in arrival order up to Limit.
	EventFCFS EventType = "fcfs"
	// EventConfirmative holds enrollments until a manager accepts them.
	EventConfirmative EventType = "confirmative"
)

// Valid reports whether t is a known type.
func (t EventType) Valid() bool {
	return t == EventFCFS || t == EventConfirmative
}

// Event field limits.
const (
	EventTitleMax = 50
	EventMinLimit = 2
)

// Event is a scheduled meetup of a study.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	StudyID     primitive.ObjectID `bson:"study_id" json:"study_id"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"` // sanitized HTML
	Type        EventType          `bson:"type" json:"type"`
	Limit       int                `bson:"limit" json:"limit"`

	EndEnrollmentAt time.Time `bson:"end_enrollment_at" json:"end_enrollment_at"`
	StartAt         time.Time `bson:"start_at" json:"start_at"`
	EndAt           time.Time `bson:"end_at" json:"end_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
