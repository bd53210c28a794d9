// internal/domain/models/study.go
package models

import (
	"net/url"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field limits shared by request validation and the collection validator.
const (
	StudyPathPattern         = `^[ㄱ-ㅎ가-힣a-z0-9_-]{2,20}$`
	StudyTitleMax            = 50
	StudyShortDescriptionMax = 100
)

// StudyPathRE matches a valid study path.
var StudyPathRE = regexp.MustCompile(StudyPathPattern)

// Study is a community with a publish / recruit / close lifecycle.
//
// NOTE:
//   - Relationship sets hold IDs only. Resolved documents travel in a
//     StudyGraph built by the directory with an explicit include set.
//   - Version is bumped on every save and guards read-modify-write races.
type Study struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Path             string             `bson:"path" json:"path"`
	Title            string             `bson:"title" json:"title"`
	ShortDescription string             `bson:"short_description" json:"short_description"`
	FullDescription  string             `bson:"full_description" json:"full_description"` // sanitized HTML
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	UseBanner        bool               `bson:"use_banner" json:"use_banner"`

	ManagerIDs IDSet `bson:"manager_ids" json:"manager_ids"`
	MemberIDs  IDSet `bson:"member_ids" json:"member_ids"`
	TagIDs     IDSet `bson:"tag_ids" json:"tag_ids"`
	ZoneIDs    IDSet `bson:"zone_ids" json:"zone_ids"`

	Published  bool `bson:"published" json:"published"`
	Closed     bool `bson:"closed" json:"closed"`
	Recruiting bool `bson:"recruiting" json:"recruiting"`

	PublishedAt         *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ClosedAt            *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	RecruitingUpdatedAt *time.Time `bson:"recruiting_updated_at,omitempty" json:"recruiting_updated_at,omitempty"`

	MemberCount int   `bson:"member_count" json:"member_count"`
	Version     int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EncodedPath returns the path escaped for use in a URL segment.
func (s *Study) EncodedPath() string {
	return url.PathEscape(s.Path)
}

// StudyGraph is a Study together with the related documents the caller
// asked the directory to load. Slices that were not requested stay nil.
type StudyGraph struct {
	Study    Study     `json:"study"`
	Tags     []Tag     `json:"tags,omitempty"`
	Zones    []Zone    `json:"zones,omitempty"`
	Managers []Account `json:"managers,omitempty"`
	Members  []Account `json:"members,omitempty"`
}
