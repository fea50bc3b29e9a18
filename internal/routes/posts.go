package routes

import (
	"net/http"

	"github.com/debemdeboas/quill/internal/auth"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/render"
	"github.com/gorilla/mux"
)

func (h *Handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.Posts.List(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, page)
}

func (h *Handlers) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.Get(r.Context(), model.PostID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, postBody{Post: post})
}

func (h *Handlers) postHTML(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.Get(r.Context(), model.PostID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set("ETag", `"`+post.ContentHash+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(render.Cached([]byte(post.Content), post.ContentHash))
}

func syntaxCSS(w http.ResponseWriter, r *http.Request) {
	style := r.URL.Query().Get("style")
	if style == "" {
		style = render.DefaultStyle
	}
	w.Header().Set(config.HCType, "text/css; charset=utf-8")
	w.Header().Set(config.HCacheControl, "public, max-age=3600")
	if err := render.StyleCSS(w, style); err != nil {
		routesLogger.Error().Err(err).Str("style", style).Msg("Failed to write syntax CSS")
	}
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in model.PostInput
	if err := ParseJSONBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.Posts.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusCreated, postBody{Message: config.MsgPostCreated, Post: post})
}

func (h *Handlers) updatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in model.PostInput
	if err := ParseJSONBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.Posts.Update(r.Context(), userID, model.PostID(mux.Vars(r)["id"]), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, postBody{Message: config.MsgPostUpdated, Post: post})
}

func (h *Handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Posts.Delete(r.Context(), userID, model.PostID(mux.Vars(r)["id"])); err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, messageBody{Message: config.MsgPostDeleted})
}
