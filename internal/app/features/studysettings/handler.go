// internal/app/features/studysettings/handler.go
package studysettings

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/studies"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/studyevents"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves /study/{path}/settings. Every route requires the caller to
// manage the study.
type Handler struct {
	Dir     directory.Directory
	Events  *studyevents.Notifier
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Now     func() time.Time
}

func NewHandler(dir directory.Directory, events *studyevents.Notifier, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:     dir,
		Events:  events,
		Metrics: m,
		Log:     logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// loadManaged loads the study at {path} with load and requires the caller
// to be one of its managers.
func (h *Handler) loadManaged(ctx context.Context, r *http.Request, load directory.Loader) (*models.StudyGraph, error) {
	g, err := load(ctx, studies.PathParam(r))
	if err != nil {
		return nil, err
	}
	if err := studypolicy.RequireManage(authz.CallerFrom(r), &g.Study); err != nil {
		return nil, err
	}
	return g, nil
}

// serve loads the managed study with load and hands it to fn for a
// read-only response.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, load directory.Loader, fn func(context.Context, *models.StudyGraph) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.loadManaged(ctx, r, load)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	data, err := fn(ctx, g)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	respond.Success(w, http.StatusOK, "", data)
}

// update applies fn to the managed study and saves it. On any failure it
// writes the error response and returns nil.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.Study) error) *models.Study {
	s, err := h.apply(r, fn)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return nil
	}
	return s
}

func (h *Handler) apply(r *http.Request, fn func(context.Context, *models.Study) error) (*models.Study, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.loadManaged(ctx, r, h.Dir.FindStudyWithManagers)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, &g.Study); err != nil {
		return nil, err
	}
	if err := h.Dir.Studies.Save(ctx, &g.Study); err != nil {
		return nil, err
	}
	return &g.Study, nil
}

// decodeValid decodes the JSON body into dst and runs its validate tags.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(r, dst); err != nil {
		uierrors.BadRequest(w, r, "invalid JSON body")
		return false
	}
	if res := inputval.Validate(dst); res.HasErrors() {
		uierrors.Validation(w, r, res)
		return false
	}
	return true
}
