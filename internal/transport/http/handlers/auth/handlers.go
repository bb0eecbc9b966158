package authhandler

import (
	"net/http"

	"smartraise/internal/domain/auth"
	"smartraise/internal/platform/apperr"
	"smartraise/internal/transport/http/middleware"
	"smartraise/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload auth.LoginInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	session, err := h.Service.Login(r.Context(), payload)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, session)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		shared.Respond(w, r, apperr.Unauthorized("please authenticate"))
		return
	}
	me, err := h.Service.Me(r.Context(), user.UserID)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, me)
}
