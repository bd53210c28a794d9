// internal/app/features/studies/views.go
package studies

import (
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
)

// PersonView is the public face of an account. Emails are never exposed.
type PersonView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

func people(accounts []models.Account) []PersonView {
	out := make([]PersonView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, PersonView{ID: a.ID.Hex(), Nickname: a.Nickname})
	}
	return out
}

// StudySummary is a study card for listings.
type StudySummary struct {
	Path             string     `json:"path"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	Image            string     `json:"image,omitempty"`
	UseBanner        bool       `json:"use_banner"`
	State            string     `json:"state"`
	Recruiting       bool       `json:"recruiting"`
	MemberCount      int        `json:"member_count"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
}

func NewStudySummary(s *models.Study) StudySummary {
	return StudySummary{
		Path:             s.Path,
		Title:            s.Title,
		ShortDescription: s.ShortDescription,
		Image:            s.Image,
		UseBanner:        s.UseBanner,
		State:            study.StateOf(s).String(),
		Recruiting:       s.Recruiting,
		MemberCount:      s.MemberCount,
		PublishedAt:      s.PublishedAt,
	}
}

// StudyView is the full study page, including what the caller may do.
type StudyView struct {
	StudySummary
	FullDescription string       `json:"full_description"`
	ClosedAt        *time.Time   `json:"closed_at,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Zones           []string     `json:"zones,omitempty"`
	Managers        []PersonView `json:"managers,omitempty"`
	Members         []PersonView `json:"members,omitempty"`

	IsManager  bool `json:"is_manager"`
	IsMember   bool `json:"is_member"`
	IsJoinable bool `json:"is_joinable"`
}

func NewStudyView(g *models.StudyGraph, c authz.Caller) StudyView {
	s := &g.Study
	v := StudyView{
		StudySummary:    NewStudySummary(s),
		FullDescription: s.FullDescription,
		ClosedAt:        s.ClosedAt,
	}
	if g.Tags != nil {
		v.Tags = TagTitles(g.Tags)
	}
	if g.Zones != nil {
		v.Zones = ZoneNames(g.Zones)
	}
	if g.Managers != nil {
		v.Managers = people(g.Managers)
	}
	if g.Members != nil {
		v.Members = people(g.Members)
	}
	if !c.Anonymous() {
		v.IsManager = study.IsManager(s, c.AccountID)
		v.IsMember = study.IsMember(s, c.AccountID)
		v.IsJoinable = study.IsJoinable(s, c.AccountID)
	}
	return v
}

func TagTitles(tags []models.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Title)
	}
	return out
}

func ZoneNames(zones []models.Zone) []string {
	out := make([]string, 0, len(zones))
	for _, z := range zones {
		out = append(out, z.String())
	}
	return out
}
