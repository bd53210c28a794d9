// internal/app/features/events/handler.go
package events

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/studies"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/event"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves a study's meetups: managers schedule them, anyone who can
// see the study can list them.
type Handler struct {
	Dir     directory.Directory
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Now     func() time.Time
}

func NewHandler(dir directory.Directory, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:     dir,
		Metrics: m,
		Log:     logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /study/{path}/new-event                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type createEventInput struct {
	Title           string    `json:"title" validate:"required,max=50" label:"Title"`
	Description     string    `json:"description" validate:"required" label:"Description"`
	Type            string    `json:"type" validate:"required" label:"Type"`
	Limit           int       `json:"limit"`
	EndEnrollmentAt time.Time `json:"end_enrollment_at"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if caller.Anonymous() {
		uierrors.Unauthenticated(w, r)
		return
	}

	var in createEventInput
	if err := respond.Decode(r, &in); err != nil {
		uierrors.BadRequest(w, r, "invalid JSON body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.Validation(w, r, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Dir.FindStudyWithManagers(ctx, studies.PathParam(r))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if err := studypolicy.RequireManage(caller, &g.Study); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	e, err := event.New(&g.Study, caller.AccountID, event.Draft{
		Title:           in.Title,
		Description:     htmlsanitize.Prepare(in.Description),
		Type:            models.EventType(in.Type),
		Limit:           in.Limit,
		EndEnrollmentAt: in.EndEnrollmentAt,
		StartAt:         in.StartAt,
		EndAt:           in.EndAt,
	}, h.Now())
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	created, err := h.Dir.Events.Create(ctx, e)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	h.Metrics.EventCreated()

	h.Log.Info("event created",
		zap.String("path", g.Study.Path),
		zap.String("event_id", created.ID.Hex()),
		zap.String("account_id", caller.AccountID.Hex()))
	respond.Success(w, http.StatusCreated, "event created", created)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /study/{path}/events                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	path := studies.PathParam(r)
	s, err := h.Dir.Studies.GetByPath(ctx, path)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if !studypolicy.CanView(authz.CallerFrom(r), s) {
		uierrors.Write(w, r, h.Log, domainerr.NotFoundf("study", path))
		return
	}

	list, err := h.Dir.Events.ListByStudy(ctx, s.ID)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	respond.Success(w, http.StatusOK, "", list)
}
