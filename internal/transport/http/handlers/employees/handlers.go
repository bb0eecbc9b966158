package employeehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/employee"
	"smartraise/internal/transport/http/middleware"
	"smartraise/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
}

func NewHandler(service *employee.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(admin).Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.With(admin).Put("/{employeeID}", h.handleUpdate)
		r.With(admin).Patch("/{employeeID}", h.handleUpdate)
		r.With(admin).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, employees)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.Created(w, r, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, emp)
}

// handleUpdate serves PUT and PATCH alike: only fields present in the body
// change.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Patch
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, map[string]string{"message": "employee deleted"})
}
