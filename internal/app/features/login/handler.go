// internal/app/features/login/handler.go
package login

// Terminology: login is what the user types, either an e-mail address or a
// nickname. The account ID is the Mongo ObjectID.

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/signup"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"go.uber.org/zap"
)

const badCredentialsMsg = "The login or password is incorrect."

type Handler struct {
	Accounts   directory.Accounts
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

func NewHandler(accounts directory.Accounts, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   accounts,
		SessionMgr: sm,
		Limiter:    limiter,
		Metrics:    m,
		Log:        logger,
	}
}

type loginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(r, &in); err != nil {
		uierrors.BadRequest(w, r, "invalid JSON body")
		return
	}
	if in.Login == "" || in.Password == "" {
		uierrors.BadRequest(w, r, "login and password are required")
		return
	}

	if ok, msg := h.Limiter.Check(r, in.Login); !ok {
		h.Metrics.Login(metrics.ResultLimited)
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("login", in.Login))
		respond.Error(w, r, http.StatusTooManyRequests, uierrors.CodeRateLimited, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Accounts.GetByLogin(ctx, in.Login)
	if err != nil && !errors.Is(err, domainerr.ErrNotFound) {
		h.Metrics.Login(metrics.ResultError)
		uierrors.Write(w, r, h.Log, err)
		return
	}
	// Same answer for an unknown login and a wrong password.
	if a == nil || !authutil.CheckPassword(in.Password, a.PasswordHash) {
		h.Metrics.Login(metrics.ResultFailed)
		respond.Error(w, r, http.StatusUnauthorized, uierrors.CodeUnauthenticated, badCredentialsMsg)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: a.ID.Hex(), Nickname: a.Nickname, Email: a.Email}); err != nil {
		h.Metrics.Login(metrics.ResultError)
		uierrors.Write(w, r, h.Log, err)
		return
	}
	h.Limiter.ResetLogin(in.Login)
	h.Metrics.Login(metrics.ResultOK)
	h.Log.Info("login", zap.String("account_id", a.ID.Hex()))
	respond.Success(w, http.StatusOK, "signed in", signup.NewAccountView(a))
}
