// internal/app/features/studysettings/lifecycle.go
package studysettings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/studyevents"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
	"go.uber.org/zap"
)

// Transition names used for metrics and logs.
const (
	TransitionPublish      = "publish"
	TransitionClose        = "close"
	TransitionRecruitStart = "recruit_start"
	TransitionRecruitStop  = "recruit_stop"
	TransitionRemove       = "remove"
)

// StatusView describes where the study sits in its lifecycle and which
// transitions are currently allowed.
type StatusView struct {
	Path                 string     `json:"path"`
	Title                string     `json:"title"`
	State                string     `json:"state"`
	Published            bool       `json:"published"`
	Closed               bool       `json:"closed"`
	Recruiting           bool       `json:"recruiting"`
	PublishedAt          *time.Time `json:"published_at,omitempty"`
	ClosedAt             *time.Time `json:"closed_at,omitempty"`
	CanUpdateRecruiting  bool       `json:"can_update_recruiting"`
	NextRecruitingUpdate *time.Time `json:"next_recruiting_update,omitempty"`
	Removable            bool       `json:"removable"`
}

func newStatusView(s *models.Study, now time.Time) StatusView {
	v := StatusView{
		Path:                s.Path,
		Title:               s.Title,
		State:               study.StateOf(s).String(),
		Published:           s.Published,
		Closed:              s.Closed,
		Recruiting:          s.Recruiting,
		PublishedAt:         s.PublishedAt,
		ClosedAt:            s.ClosedAt,
		CanUpdateRecruiting: !s.Closed && study.CanUpdateRecruiting(s, now),
		Removable:           study.IsRemovable(s),
	}
	if next := study.NextRecruitingUpdate(s); !next.IsZero() && next.After(now) {
		v.NextRecruitingUpdate = &next
	}
	return v
}

func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	h.serve(w, r, h.Dir.FindStudyWithManagers, func(_ context.Context, g *models.StudyGraph) (any, error) {
		return newStatusView(&g.Study, now), nil
	})
}

// resultOf classifies a transition outcome for metrics.
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domainerr.ErrRateLimited):
		return metrics.ResultLimited
	case errors.Is(err, domainerr.ErrInvalidStateTransition), errors.Is(err, studypolicy.ErrForbidden),
		errors.Is(err, domainerr.ErrNotFound):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

// transition runs a lifecycle operation against the managed study and
// records its outcome.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, fn func(*models.Study, time.Time) error) *models.Study {
	now := h.Now()
	s, err := h.apply(r, func(_ context.Context, s *models.Study) error {
		return fn(s, now)
	})
	h.Metrics.Transition(name, resultOf(err))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return nil
	}
	h.Log.Info("study transition",
		zap.String("path", s.Path),
		zap.String("transition", name),
		zap.String("state", study.StateOf(s).String()))
	respond.Success(w, http.StatusOK, "", newStatusView(s, now))
	return s
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if s := h.transition(w, r, TransitionPublish, study.Publish); s != nil {
		h.Events.StudyCreated(*s)
	}
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if s := h.transition(w, r, TransitionClose, study.Close); s != nil {
		h.Events.StudyUpdated(*s, studyevents.MsgClosed)
	}
}

func (h *Handler) HandleRecruitStart(w http.ResponseWriter, r *http.Request) {
	s := h.transition(w, r, TransitionRecruitStart, func(s *models.Study, now time.Time) error {
		if err := checkCooldown(w, s, now); err != nil {
			return err
		}
		return study.StartRecruit(s, now)
	})
	if s != nil {
		h.Events.StudyUpdated(*s, studyevents.MsgRecruitingStart)
	}
}

func (h *Handler) HandleRecruitStop(w http.ResponseWriter, r *http.Request) {
	s := h.transition(w, r, TransitionRecruitStop, func(s *models.Study, now time.Time) error {
		if err := checkCooldown(w, s, now); err != nil {
			return err
		}
		return study.StopRecruit(s, now)
	})
	if s != nil {
		h.Events.StudyUpdated(*s, studyevents.MsgRecruitingStop)
	}
}

// checkCooldown rejects a recruiting toggle inside the cooldown window and
// tells the client when to retry.
func checkCooldown(w http.ResponseWriter, s *models.Study, now time.Time) error {
	if !s.Published || s.Closed || study.CanUpdateRecruiting(s, now) {
		return nil
	}
	next := study.NextRecruitingUpdate(s)
	wait := int(math.Ceil(next.Sub(now).Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(max(wait, 1)))
	return domainerr.RateLimit("recruit",
		fmt.Sprintf("can't change recruiting multiple times within 1 hour; try again after %s",
			next.Format(time.RFC3339)))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Path, title, removal                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type pathInput struct {
	NewPath string `json:"new_path" validate:"required,studypath" label:"Path"`
}

type titleInput struct {
	NewTitle string `json:"new_title" validate:"required,max=50" label:"Title"`
}

func (h *Handler) HandlePath(w http.ResponseWriter, r *http.Request) {
	var in pathInput
	if !decodeValid(w, r, &in) {
		return
	}
	s := h.update(w, r, func(ctx context.Context, s *models.Study) error {
		if in.NewPath == s.Path {
			return nil
		}
		exists, err := h.Dir.Studies.ExistsByPath(ctx, in.NewPath)
		if err != nil {
			return err
		}
		if exists {
			return uierrors.BadInput("This study path cannot be used.", nil)
		}
		s.Path = in.NewPath
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "study path updated", struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}{s.Path, "/study/" + s.EncodedPath()})
}

func (h *Handler) HandleTitle(w http.ResponseWriter, r *http.Request) {
	var in titleInput
	if !decodeValid(w, r, &in) {
		return
	}
	s := h.update(w, r, func(_ context.Context, s *models.Study) error {
		s.Title = strings.TrimSpace(in.NewTitle)
		return nil
	})
	if s == nil {
		return
	}
	respond.Success(w, http.StatusOK, "study title updated", struct {
		Title string `json:"title"`
	}{s.Title})
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.loadManaged(ctx, r, h.Dir.FindStudyWithManagers)
	if err == nil && !study.IsRemovable(&g.Study) {
		err = domainerr.InvalidTransition("remove", "a published study cannot be removed")
	}
	if err == nil {
		err = h.Dir.Studies.Delete(ctx, g.Study.ID)
	}
	h.Metrics.Transition(TransitionRemove, resultOf(err))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	h.Log.Info("study removed", zap.String("path", g.Study.Path))
	respond.Success(w, http.StatusOK, "study removed", nil)
}
