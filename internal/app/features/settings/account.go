// internal/app/features/settings/account.go
package settings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// NotificationsView is both the GET body and the POST input for
// /settings/notifications.
type NotificationsView struct {
	StudyCreatedByEmail bool `json:"study_created_by_email"`
	StudyUpdatedByEmail bool `json:"study_updated_by_email"`
}

func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(_ context.Context, a *models.Account) (any, error) {
		return NotificationsView{a.StudyCreatedByEmail, a.StudyUpdatedByEmail}, nil
	})
}

func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	var in NotificationsView
	if !decodeValid(w, r, &in) {
		return
	}
	a := h.update(w, r, func(_ context.Context, a *models.Account) error {
		a.StudyCreatedByEmail = in.StudyCreatedByEmail
		a.StudyUpdatedByEmail = in.StudyUpdatedByEmail
		return nil
	})
	if a == nil {
		return
	}
	respond.Success(w, http.StatusOK, "notification settings updated",
		NotificationsView{a.StudyCreatedByEmail, a.StudyUpdatedByEmail})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Password                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type passwordInput struct {
	NewPassword        string `json:"new_password" validate:"required" label:"New password"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required" label:"Password confirmation"`
}

func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordInput
	if !decodeValid(w, r, &in) {
		return
	}
	if in.NewPassword != in.NewPasswordConfirm {
		uierrors.BadRequest(w, r, "The passwords do not match.")
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		uierrors.BadRequest(w, r, err.Error())
		return
	}
	hash, err := authutil.HashPassword(in.NewPassword)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	a := h.update(w, r, func(_ context.Context, a *models.Account) error {
		a.PasswordHash = hash
		return nil
	})
	if a == nil {
		return
	}
	h.Log.Info("password changed", zap.String("account_id", a.ID.Hex()))
	respond.Success(w, http.StatusOK, "password updated", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Nickname                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type nicknameInput struct {
	Nickname string `json:"nickname" validate:"required,nickname" label:"Nickname"`
}

func (h *Handler) HandleNickname(w http.ResponseWriter, r *http.Request) {
	var in nicknameInput
	if !decodeValid(w, r, &in) {
		return
	}
	a := h.update(w, r, func(ctx context.Context, a *models.Account) error {
		nick := strings.TrimSpace(in.Nickname)
		if normalize.NicknameCI(nick) == a.NicknameCI {
			a.Nickname = nick
			return nil
		}
		other, err := h.Dir.Accounts.GetByNickname(ctx, nick)
		switch {
		case err == nil && other.ID != a.ID:
			return uierrors.BadInput("This nickname is already in use.", nil)
		case err != nil && !errors.Is(err, domainerr.ErrNotFound):
			return err
		}
		a.Nickname = nick
		return nil
	})
	if a == nil {
		return
	}
	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: a.ID.Hex(), Nickname: a.Nickname, Email: a.Email}); err != nil {
		h.Log.Warn("session refresh after nickname change failed", zap.Error(err))
	}
	respond.Success(w, http.StatusOK, "nickname updated", struct {
		Nickname string `json:"nickname"`
	}{a.Nickname})
}
