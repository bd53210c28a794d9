// internal/app/features/signup/routes.go
package signup

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts sign-up and e-mail confirmation on r.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Post("/sign-up", h.HandleSignUp)
	r.Get("/check-email-token", h.ServeCheckEmailToken)
	r.With(sm.RequireSignedIn).Post("/resend-confirm-email", h.HandleResendConfirmEmail)
}
