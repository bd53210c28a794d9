// internal/app/features/studysettings/routes.go
package studysettings

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the settings router, mounted at /study/{path}/settings.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/description", h.ServeDescription)
	r.Post("/description", h.HandleDescription)

	r.Get("/banner", h.ServeBanner)
	r.Post("/banner", h.HandleBannerImage)
	r.Post("/banner/enable", h.HandleBannerEnable)
	r.Post("/banner/disable", h.HandleBannerDisable)

	r.Get("/tags", h.ServeTags)
	r.Post("/tags/add", h.HandleAddTag)
	r.Post("/tags/remove", h.HandleRemoveTag)

	r.Get("/zones", h.ServeZones)
	r.Post("/zones/add", h.HandleAddZone)
	r.Post("/zones/remove", h.HandleRemoveZone)

	r.Get("/study", h.ServeStatus)
	r.Post("/study/publish", h.HandlePublish)
	r.Post("/study/close", h.HandleClose)
	r.Post("/recruit/start", h.HandleRecruitStart)
	r.Post("/recruit/stop", h.HandleRecruitStop)
	r.Post("/study/path", h.HandlePath)
	r.Post("/study/title", h.HandleTitle)
	r.Post("/study/remove", h.HandleRemove)

	return r
}
