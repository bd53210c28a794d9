// internal/app/features/studysettings/catalogue.go
package studysettings

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/studies"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
)

// TagInput names a tag by title.
type TagInput struct {
	Title string `json:"title" validate:"required" label:"Tag"`
}

// ZoneInput names a zone by its natural key.
type ZoneInput struct {
	City     string `json:"city" validate:"required" label:"City"`
	Province string `json:"province" validate:"required" label:"Province"`
}

// ZoneView is a zone as offered in the whitelist.
type ZoneView struct {
	City            string `json:"city"`
	LocalNameOfCity string `json:"local_name_of_city"`
	Province        string `json:"province"`
	Name            string `json:"name"`
}

func NewZoneView(z models.Zone) ZoneView {
	return ZoneView{City: z.City, LocalNameOfCity: z.LocalNameOfCity, Province: z.Province, Name: z.String()}
}

// ZoneViews converts zones for the whitelist.
func ZoneViews(zones []models.Zone) []ZoneView {
	out := make([]ZoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, NewZoneView(z))
	}
	return out
}

// unknownInput turns a catalogue miss into a 400, since the client named
// something that does not exist.
func unknownInput(err error, msg string) error {
	if errors.Is(err, domainerr.ErrNotFound) {
		return uierrors.BadInput(msg, err)
	}
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tags                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTags(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Dir.FindStudyWithTags, func(ctx context.Context, g *models.StudyGraph) (any, error) {
		all, err := h.Dir.Tags.List(ctx)
		if err != nil {
			return nil, err
		}
		return struct {
			Tags      []string `json:"tags"`
			Whitelist []string `json:"whitelist"`
		}{studies.TagTitles(g.Tags), studies.TagTitles(all)}, nil
	})
}

func (h *Handler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	var in TagInput
	if !decodeValid(w, r, &in) {
		return
	}
	var tag models.Tag
	s := h.update(w, r, func(ctx context.Context, s *models.Study) error {
		var err error
		if tag, err = h.Dir.Tags.FindOrCreate(ctx, in.Title); err != nil {
			return err
		}
		study.AddTag(s, tag)
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "tag added", TagInput{Title: tag.Title})
}

func (h *Handler) HandleRemoveTag(w http.ResponseWriter, r *http.Request) {
	var in TagInput
	if !decodeValid(w, r, &in) {
		return
	}
	var tag *models.Tag
	s := h.update(w, r, func(ctx context.Context, s *models.Study) error {
		var err error
		if tag, err = h.Dir.Tags.FindByTitle(ctx, in.Title); err != nil {
			return unknownInput(err, "unknown tag")
		}
		study.RemoveTag(s, *tag)
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "tag removed", TagInput{Title: tag.Title})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Zones                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeZones(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Dir.FindStudyWithZones, func(ctx context.Context, g *models.StudyGraph) (any, error) {
		all, err := h.Dir.Zones.List(ctx)
		if err != nil {
			return nil, err
		}
		return struct {
			Zones     []ZoneView `json:"zones"`
			Whitelist []ZoneView `json:"whitelist"`
		}{ZoneViews(g.Zones), ZoneViews(all)}, nil
	})
}

func (h *Handler) HandleAddZone(w http.ResponseWriter, r *http.Request) {
	h.changeZone(w, r, "zone added", study.AddZone)
}

func (h *Handler) HandleRemoveZone(w http.ResponseWriter, r *http.Request) {
	h.changeZone(w, r, "zone removed", study.RemoveZone)
}

func (h *Handler) changeZone(w http.ResponseWriter, r *http.Request, msg string, apply func(*models.Study, models.Zone)) {
	var in ZoneInput
	if !decodeValid(w, r, &in) {
		return
	}
	var zone *models.Zone
	s := h.update(w, r, func(ctx context.Context, s *models.Study) error {
		var err error
		if zone, err = h.Dir.Zones.FindByCityAndProvince(ctx, in.City, in.Province); err != nil {
			return unknownInput(err, "unknown zone")
		}
		apply(s, *zone)
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, msg, NewZoneView(*zone))
}
