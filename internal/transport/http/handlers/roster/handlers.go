package rosterhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"salesboard/internal/domain/roster"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
)

type Handler struct {
	Roster *roster.Roster
}

func NewHandler(r *roster.Roster) *Handler {
	return &Handler{Roster: r}
}

// RegisterRoutes exposes the roster without a session so the login screen can
// list names.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roster", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Roster.Employees(), middleware.GetRequestID(r.Context()))
}
