package routes

import (
	"net/http"

	"github.com/debemdeboas/quill/internal/auth"
	"github.com/debemdeboas/quill/internal/model"
)

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := ParseJSONBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusCreated, resp)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := ParseJSONBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Auth.User(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]*model.User{"user": user})
}
