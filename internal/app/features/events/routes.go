// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts the study event routes on r. Scheduling requires a
// signed-in manager.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Get("/study/{path}/events", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/study/{path}/new-event", h.HandleCreate)
	})
}
