// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the account settings router, mounted at /settings.
// Every route requires a signed-in account.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/tags", h.ServeTags)
	r.Post("/tags/add", h.HandleAddTag)
	r.Post("/tags/remove", h.HandleRemoveTag)

	r.Get("/zones", h.ServeZones)
	r.Post("/zones/add", h.HandleAddZone)
	r.Post("/zones/remove", h.HandleRemoveZone)

	r.Get("/notifications", h.ServeNotifications)
	r.Post("/notifications", h.HandleNotifications)

	r.Post("/password", h.HandlePassword)
	r.Post("/account", h.HandleNickname)

	return r
}
