// internal/app/features/studies/handler.go
package studies

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 9
	maxListLimit     = 50
)

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

// PathParam returns the {path} URL parameter, unescaped.
func PathParam(r *http.Request) string {
	p := chi.URLParam(r, "path")
	if u, err := url.PathUnescape(p); err == nil {
		return u
	}
	return p
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /new-study                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type createStudyInput struct {
	Path             string `json:"path" validate:"required,studypath" label:"Path"`
	Title            string `json:"title" validate:"required,max=50" label:"Title"`
	ShortDescription string `json:"short_description" validate:"required,max=100" label:"Short description"`
	FullDescription  string `json:"full_description" validate:"required" label:"Full description"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if caller.Anonymous() {
		uierrors.Unauthenticated(w, r)
		return
	}

	var in createStudyInput
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

	exists, err := h.Dir.Studies.ExistsByPath(ctx, in.Path)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if exists {
		respond.Error(w, r, http.StatusBadRequest, uierrors.CodeValidation, "This study path cannot be used.")
		return
	}

	s := study.New(in.Path, in.Title, in.ShortDescription,
		htmlsanitize.Prepare(in.FullDescription), caller.AccountID, h.Now())
	created, err := h.Dir.Studies.Create(ctx, s)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	h.Log.Info("study created",
		zap.String("path", created.Path),
		zap.String("account_id", caller.AccountID.Hex()))
	respond.Success(w, http.StatusCreated, "study created", NewStudyView(&models.StudyGraph{Study: created}, caller))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /studies                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := query.Get(r, "limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			uierrors.BadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Dir.Studies.ListPublished(ctx, limit)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	out := make([]StudySummary, 0, len(list))
	for i := range list {
		out = append(out, NewStudySummary(&list[i]))
	}
	respond.Success(w, http.StatusOK, "", out)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /study/{path}, GET /study/{path}/members                                |
*─────────────────────────────────────────────────────────────────────────────*/

// loadVisible loads the study with load and hides drafts from non-managers.
func (h *Handler) loadVisible(ctx context.Context, r *http.Request, load directory.Loader) (*models.StudyGraph, authz.Caller, error) {
	caller := authz.CallerFrom(r)
	path := PathParam(r)
	g, err := load(ctx, path)
	if err != nil {
		return nil, caller, err
	}
	if !studypolicy.CanView(caller, &g.Study) {
		return nil, caller, domainerr.NotFoundf("study", path)
	}
	return g, caller, nil
}

func (h *Handler) ServeStudy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, caller, err := h.loadVisible(ctx, r, h.Dir.FindStudy)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	respond.Success(w, http.StatusOK, "", NewStudyView(g, caller))
}

func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, _, err := h.loadVisible(ctx, r, h.Dir.FindStudyWithMembers)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	respond.Success(w, http.StatusOK, "", struct {
		Managers []PersonView `json:"managers"`
		Members  []PersonView `json:"members"`
	}{people(g.Managers), people(g.Members)})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /study/{path}/join, POST /study/{path}/leave                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, "join", func(c authz.Caller, s *models.Study) error {
		if !studypolicy.CanJoin(c, s) {
			return joinRefusal(c, s)
		}
		study.AddMember(s, c.AccountID)
		return nil
	})
}

func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, "leave", func(c authz.Caller, s *models.Study) error {
		if !studypolicy.CanLeave(c, s) {
			return domainerr.Conflictf("leave", "you are not a member of this study")
		}
		study.RemoveMember(s, c.AccountID)
		return nil
	})
}

func joinRefusal(c authz.Caller, s *models.Study) error {
	switch {
	case study.IsManager(s, c.AccountID):
		return domainerr.Conflictf("join", "managers cannot join their own study")
	case study.IsMember(s, c.AccountID):
		return domainerr.Conflictf("join", "you are already a member")
	default:
		return domainerr.InvalidTransition("join", "study is not recruiting")
	}
}

func (h *Handler) changeMembership(w http.ResponseWriter, r *http.Request, change string, apply func(authz.Caller, *models.Study) error) {
	caller := authz.CallerFrom(r)
	if caller.Anonymous() {
		uierrors.Unauthenticated(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, _, err := h.loadVisible(ctx, r, h.Dir.FindStudyWithManagers)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	s := &g.Study
	if err := apply(caller, s); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if err := h.Dir.Studies.Save(ctx, s); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	h.Metrics.Membership(change)

	respond.Success(w, http.StatusOK, "", struct {
		MemberCount int  `json:"member_count"`
		IsMember    bool `json:"is_member"`
	}{s.MemberCount, study.IsMember(s, caller.AccountID)})
}
