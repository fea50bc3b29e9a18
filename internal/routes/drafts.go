package routes

import (
	"net/http"

	"github.com/debemdeboas/quill/internal/auth"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/gorilla/mux"
)

type draftBody struct {
	Message string       `json:"message,omitempty"`
	Draft   *model.Draft `json:"draft"`
}

type draftsBody struct {
	Drafts []model.Draft `json:"drafts"`
}

type postBody struct {
	Message string      `json:"message,omitempty"`
	Post    *model.Post `json:"post"`
}

func (h *Handlers) saveDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req model.SaveDraftRequest
	if err := ParseJSONBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	draft, created, err := h.Drafts.Save(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if created {
		JSONResponse(w, http.StatusCreated, draftBody{Message: config.MsgDraftCreated, Draft: draft})
		return
	}
	JSONResponse(w, http.StatusOK, draftBody{Message: config.MsgDraftUpdated, Draft: draft})
}

func (h *Handlers) listDrafts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	drafts, err := h.Drafts.List(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, draftsBody{Drafts: drafts})
}

func (h *Handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	draft, err := h.Drafts.Get(r.Context(), userID, model.DraftID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, draftBody{Draft: draft})
}

func (h *Handlers) deleteDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Drafts.Delete(r.Context(), userID, model.DraftID(mux.Vars(r)["id"])); err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, messageBody{Message: config.MsgDraftDeleted})
}

func (h *Handlers) publishDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.Drafts.Publish(r.Context(), userID, model.DraftID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusCreated, postBody{Message: config.MsgDraftPublished, Post: post})
}
