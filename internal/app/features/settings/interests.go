// internal/app/features/settings/interests.go
package settings

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/studies"
	"github.com/dalemusser/studyhub/internal/app/features/studysettings"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
)

func notFoundAsBadInput(err error, msg string) error {
	if errors.Is(err, domainerr.ErrNotFound) {
		return uierrors.BadInput(msg, err)
	}
	return err
}

// ServeTags handles GET /settings/tags.
func (h *Handler) ServeTags(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, a *models.Account) (any, error) {
		mine, err := h.Dir.Tags.GetByIDs(ctx, a.TagIDs)
		if err != nil {
			return nil, err
		}
		all, err := h.Dir.Tags.List(ctx)
		if err != nil {
			return nil, err
		}
		return struct {
			Tags      []string `json:"tags"`
			Whitelist []string `json:"whitelist"`
		}{studies.TagTitles(mine), studies.TagTitles(all)}, nil
	})
}

func (h *Handler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	var in studysettings.TagInput
	if !decodeValid(w, r, &in) {
		return
	}
	var tag models.Tag
	if a := h.update(w, r, func(ctx context.Context, a *models.Account) error {
		var err error
		if tag, err = h.Dir.Tags.FindOrCreate(ctx, in.Title); err != nil {
			return err
		}
		study.AddInterestTag(a, tag)
		return nil
	}); a == nil {
		return
	}
	respond.Success(w, http.StatusOK, "tag added", studysettings.TagInput{Title: tag.Title})
}

func (h *Handler) HandleRemoveTag(w http.ResponseWriter, r *http.Request) {
	var in studysettings.TagInput
	if !decodeValid(w, r, &in) {
		return
	}
	var tag *models.Tag
	if a := h.update(w, r, func(ctx context.Context, a *models.Account) error {
		var err error
		if tag, err = h.Dir.Tags.FindByTitle(ctx, in.Title); err != nil {
			return notFoundAsBadInput(err, "unknown tag")
		}
		study.RemoveInterestTag(a, *tag)
		return nil
	}); a == nil {
		return
	}
	respond.Success(w, http.StatusOK, "tag removed", studysettings.TagInput{Title: tag.Title})
}

// ServeZones handles GET /settings/zones.
func (h *Handler) ServeZones(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, a *models.Account) (any, error) {
		mine, err := h.Dir.Zones.GetByIDs(ctx, a.ZoneIDs)
		if err != nil {
			return nil, err
		}
		all, err := h.Dir.Zones.List(ctx)
		if err != nil {
			return nil, err
		}
		return struct {
			Zones     []studysettings.ZoneView `json:"zones"`
			Whitelist []studysettings.ZoneView `json:"whitelist"`
		}{studysettings.ZoneViews(mine), studysettings.ZoneViews(all)}, nil
	})
}

func (h *Handler) HandleAddZone(w http.ResponseWriter, r *http.Request) {
	h.changeZone(w, r, "zone added", study.AddInterestZone)
}

func (h *Handler) HandleRemoveZone(w http.ResponseWriter, r *http.Request) {
	h.changeZone(w, r, "zone removed", study.RemoveInterestZone)
}

func (h *Handler) changeZone(w http.ResponseWriter, r *http.Request, msg string, apply func(*models.Account, models.Zone)) {
	var in studysettings.ZoneInput
	if !decodeValid(w, r, &in) {
		return
	}
	var zone *models.Zone
	if a := h.update(w, r, func(ctx context.Context, a *models.Account) error {
		var err error
		if zone, err = h.Dir.Zones.FindByCityAndProvince(ctx, in.City, in.Province); err != nil {
			return notFoundAsBadInput(err, "unknown zone")
		}
		apply(a, *zone)
		return nil
	}); a == nil {
		return
	}
	respond.Success(w, http.StatusOK, msg, studysettings.NewZoneView(*zone))
}
