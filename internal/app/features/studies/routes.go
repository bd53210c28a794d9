// internal/app/features/studies/routes.go
package studies

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts the public study routes on r. Creating, joining and
// leaving require a signed-in account.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Get("/studies", h.ServeList)
	r.Get("/study/{path}", h.ServeStudy)
	r.Get("/study/{path}/members", h.ServeMembers)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/new-study", h.HandleCreate)
		pr.Post("/study/{path}/join", h.HandleJoin)
		pr.Post("/study/{path}/leave", h.HandleLeave)
	})
}
