// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/mailer"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ResendInterval is how long an account waits before another confirmation
// e-mail can be requested.
const ResendInterval = time.Hour

type Handler struct {
	Dir        directory.Directory
	SessionMgr *auth.SessionManager
	Mail       mailer.Sender
	Jobs       workers.Dispatcher
	Metrics    *metrics.Metrics
	BaseURL    string
	SiteName   string
	Log        *zap.Logger
	Now        func() time.Time
}

func NewHandler(dir directory.Directory, sm *auth.SessionManager, mail mailer.Sender, jobs workers.Dispatcher,
	m *metrics.Metrics, baseURL, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:        dir,
		SessionMgr: sm,
		Mail:       mail,
		Jobs:       jobs,
		Metrics:    m,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		SiteName:   siteName,
		Log:        logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// AccountView is what a signed-in client learns about its own account.
type AccountView struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func NewAccountView(a *models.Account) AccountView {
	return AccountView{ID: a.ID.Hex(), Nickname: a.Nickname, Email: a.Email, EmailVerified: a.EmailVerified}
}

func sessionUser(a *models.Account) auth.SessionUser {
	return auth.SessionUser{ID: a.ID.Hex(), Nickname: a.Nickname, Email: a.Email}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sign-up                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type signUpInput struct {
	Nickname string `json:"nickname" validate:"required,nickname" label:"Nickname"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpInput
	if err := respond.Decode(r, &in); err != nil {
		uierrors.BadRequest(w, r, "invalid JSON body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.Validation(w, r, res)
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		respond.Error(w, r, http.StatusBadRequest, uierrors.CodeValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if msg, err := h.taken(ctx, in.Nickname, in.Email); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	} else if msg != "" {
		respond.Error(w, r, http.StatusBadRequest, uierrors.CodeValidation, msg)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	now := h.Now()
	a, err := h.Dir.Accounts.Create(ctx, models.Account{
		Nickname:                   strings.TrimSpace(in.Nickname),
		Email:                      in.Email,
		PasswordHash:               hash,
		EmailCheckToken:            authutil.NewEmailToken(),
		EmailCheckTokenGeneratedAt: &now,
		StudyCreatedByEmail:        true,
		StudyUpdatedByEmail:        true,
	})
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	h.sendConfirmEmail(a)
	if err := h.SessionMgr.SignIn(w, r, sessionUser(&a)); err != nil {
		h.Log.Warn("sign-in after sign-up failed", zap.Error(err))
	}
	h.Metrics.Signup()
	h.Log.Info("account created", zap.String("account_id", a.ID.Hex()), zap.String("nickname", a.Nickname))
	respond.Success(w, http.StatusCreated, "check your e-mail to confirm the account", NewAccountView(&a))
}

// taken returns a user-facing message when the nickname or email is
// already registered.
func (h *Handler) taken(ctx context.Context, nickname, email string) (string, error) {
	if _, err := h.Dir.Accounts.GetByNickname(ctx, nickname); err == nil {
		return "This nickname is already in use.", nil
	} else if !errors.Is(err, domainerr.ErrNotFound) {
		return "", err
	}
	if _, err := h.Dir.Accounts.GetByEmail(ctx, email); err == nil {
		return "This email is already in use.", nil
	} else if !errors.Is(err, domainerr.ErrNotFound) {
		return "", err
	}
	return "", nil
}

func (h *Handler) confirmLink(a *models.Account) string {
	q := url.Values{}
	q.Set("token", a.EmailCheckToken)
	q.Set("email", a.Email)
	return h.BaseURL + "/check-email-token?" + q.Encode()
}

func (h *Handler) sendConfirmEmail(a models.Account) {
	msg := mailer.BuildConfirmEmail(mailer.ConfirmEmailData{
		SiteName: h.SiteName,
		Nickname: a.Nickname,
		Link:     h.confirmLink(&a),
	})
	msg.To = a.Email
	h.Jobs.Submit(workers.Job{
		Name: "confirm-email:" + a.ID.Hex(),
		Run: func(context.Context) error {
			return h.Mail.Send(msg)
		},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /check-email-token                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

const badTokenMsg = "The confirmation link is invalid or has already been used."

func (h *Handler) ServeCheckEmailToken(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")
	email := query.Get(r, "email")
	if token == "" || email == "" {
		uierrors.BadRequest(w, r, badTokenMsg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Dir.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, domainerr.ErrNotFound) {
		uierrors.BadRequest(w, r, badTokenMsg)
		return
	}
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if a.EmailCheckToken == "" || subtle.ConstantTimeCompare([]byte(a.EmailCheckToken), []byte(token)) != 1 {
		uierrors.BadRequest(w, r, badTokenMsg)
		return
	}

	now := h.Now()
	a.EmailVerified = true
	a.JoinedAt = &now
	a.EmailCheckToken = ""
	if err := h.Dir.Accounts.Save(ctx, a); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser(a)); err != nil {
		h.Log.Warn("sign-in after e-mail check failed", zap.Error(err))
	}
	h.Log.Info("e-mail confirmed", zap.String("account_id", a.ID.Hex()))
	respond.Success(w, http.StatusOK, "e-mail confirmed", NewAccountView(a))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /resend-confirm-email                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleResendConfirmEmail(w http.ResponseWriter, r *http.Request) {
	caller := authz.CallerFrom(r)
	if caller.Anonymous() {
		uierrors.Unauthenticated(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Dir.Accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	now := h.Now()
	switch {
	case a.EmailVerified:
		err = domainerr.Conflictf("resend confirm e-mail", "e-mail is already confirmed")
	case !a.CanSendConfirmEmail(now, ResendInterval):
		err = domainerr.RateLimit("resend confirm e-mail", "a confirmation e-mail can be sent once an hour")
	}
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	a.EmailCheckToken = authutil.NewEmailToken()
	a.EmailCheckTokenGeneratedAt = &now
	if err := h.Dir.Accounts.Save(ctx, a); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	h.sendConfirmEmail(*a)
	respond.Success(w, http.StatusOK, "confirmation e-mail sent", nil)
}
