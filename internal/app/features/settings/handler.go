// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns the signed-in account's own settings.
type Handler struct {
	Dir        directory.Directory
	Log        *zap.Logger
	SessionMgr *auth.SessionManager // re-issues the cookie after a nickname change
}

func NewHandler(dir directory.Directory, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Dir: dir, SessionMgr: sm, Log: logger}
}

// serve loads the caller's account and hands it to fn for a read-only
// response.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.Account) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Dir.Accounts.GetByID(ctx, authz.CallerFrom(r).AccountID)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	data, err := fn(ctx, a)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	respond.Success(w, http.StatusOK, "", data)
}

// update applies fn to the caller's account and saves it. On failure it
// writes the error response and returns nil.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.Account) error) *models.Account {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Dir.Accounts.GetByID(ctx, authz.CallerFrom(r).AccountID)
	if err == nil {
		err = fn(ctx, a)
	}
	if err == nil {
		err = h.Dir.Accounts.Save(ctx, a)
	}
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return nil
	}
	return a
}

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
