// internal/app/features/studysettings/description.go
package studysettings

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/studyevents"
	"github.com/dalemusser/studyhub/internal/domain/models"
)

type descriptionView struct {
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`
}

type descriptionInput struct {
	ShortDescription string `json:"short_description" validate:"required,max=100" label:"Short description"`
	FullDescription  string `json:"full_description" validate:"required" label:"Full description"`
}

func (h *Handler) ServeDescription(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Dir.FindStudyWithManagers, func(_ context.Context, g *models.StudyGraph) (any, error) {
		return descriptionView{g.Study.ShortDescription, g.Study.FullDescription}, nil
	})
}

func (h *Handler) HandleDescription(w http.ResponseWriter, r *http.Request) {
	var in descriptionInput
	if !decodeValid(w, r, &in) {
		return
	}
	s := h.update(w, r, func(_ context.Context, s *models.Study) error {
		s.ShortDescription = strings.TrimSpace(in.ShortDescription)
		s.FullDescription = htmlsanitize.Prepare(in.FullDescription)
		return nil
	})
	if s == nil {
		return
	}
	h.Events.StudyUpdated(*s, studyevents.MsgDescriptionEdit)
	respond.Success(w, http.StatusOK, "description updated",
		descriptionView{s.ShortDescription, s.FullDescription})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Banner                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type bannerView struct {
	Image     string `json:"image"`
	UseBanner bool   `json:"use_banner"`
}

type bannerInput struct {
	Image string `json:"image" validate:"required" label:"Image"`
}

func (h *Handler) ServeBanner(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Dir.FindStudyWithManagers, func(_ context.Context, g *models.StudyGraph) (any, error) {
		return bannerView{g.Study.Image, g.Study.UseBanner}, nil
	})
}

// validBannerImage accepts an inline image data URI or an http(s) URL.
func validBannerImage(img string) bool {
	return strings.HasPrefix(img, "data:image/") || inputval.IsValidHTTPURL(img)
}

func (h *Handler) HandleBannerImage(w http.ResponseWriter, r *http.Request) {
	var in bannerInput
	if !decodeValid(w, r, &in) {
		return
	}
	if !validBannerImage(in.Image) {
		uierrors.BadRequest(w, r, "Image must be a data:image URI or an http(s) URL.")
		return
	}
	s := h.update(w, r, func(_ context.Context, s *models.Study) error {
		s.Image = in.Image
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "banner image updated", bannerView{s.Image, s.UseBanner})
}

func (h *Handler) HandleBannerEnable(w http.ResponseWriter, r *http.Request) {
	h.setBanner(w, r, true)
}

func (h *Handler) HandleBannerDisable(w http.ResponseWriter, r *http.Request) {
	h.setBanner(w, r, false)
}

func (h *Handler) setBanner(w http.ResponseWriter, r *http.Request, on bool) {
	s := h.update(w, r, func(_ context.Context, s *models.Study) error {
		s.UseBanner = on
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "", bannerView{s.Image, s.UseBanner})
}
