// Package routes wires the HTTP API: paths, middleware and handlers.
package routes

import (
	"net/http"

	"github.com/debemdeboas/quill/internal/auth"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/metrics"
	"github.com/debemdeboas/quill/internal/service"
	"github.com/debemdeboas/quill/internal/sse"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	AuthRegisterPath = "/auth/register"
	AuthLoginPath    = "/auth/login"
	AuthSessionPath  = "/auth/session"

	DraftsPath = "/drafts"
	DraftPath  = "/drafts/{id}"

	PostsPath    = "/posts"
	PostPath     = "/posts/{id}"
	PostHTMLPath = "/posts/{id}/html"
	SyntaxCSS    = "/syntax.css"

	EventsPath = "/events"
	HealthPath = "/health"
)

var routesLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	routesLogger = l
}

type Handlers struct {
	Auth   *auth.Service
	Drafts *service.DraftService
	Posts  *service.PostService
	Events *sse.SSEClients
}

// NewRouter builds the full handler chain. The returned handler logs every
// request, verifies bearer tokens and compresses responses.
func NewRouter(h *Handlers, cfg *config.Config) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc(HealthPath, h.health).Methods(http.MethodGet)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler()).Methods(http.MethodGet)
	}

	limiter := NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	r.Handle(AuthRegisterPath, limiter.Handler(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	r.Handle(AuthLoginPath, limiter.Handler(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	r.HandleFunc(AuthSessionPath, h.session).Methods(http.MethodGet)

	r.HandleFunc(DraftsPath, h.saveDraft).Methods(http.MethodPost)
	r.HandleFunc(DraftsPath, h.listDrafts).Methods(http.MethodGet)
	r.HandleFunc(DraftPath, h.getDraft).Methods(http.MethodGet)
	r.HandleFunc(DraftPath, h.deleteDraft).Methods(http.MethodDelete)
	r.HandleFunc(DraftPath, h.publishDraft).Methods(http.MethodPost)

	r.HandleFunc(PostsPath, h.listPosts).Methods(http.MethodGet)
	r.HandleFunc(PostsPath, h.createPost).Methods(http.MethodPost)
	r.HandleFunc(PostHTMLPath, h.postHTML).Methods(http.MethodGet)
	r.HandleFunc(PostPath, h.getPost).Methods(http.MethodGet)
	r.HandleFunc(PostPath, h.updatePost).Methods(http.MethodPut)
	r.HandleFunc(PostPath, h.deletePost).Methods(http.MethodDelete)
	r.HandleFunc(SyntaxCSS, syntaxCSS).Methods(http.MethodGet)

	r.HandleFunc(EventsPath, h.events).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
	})

	var handler http.Handler = r
	handler = auth.WithBearerAuthorization(h.Auth.Tokens())(handler)
	handler = secureHeaders(handler)
	handler = compress(handler)
	handler = cors(cfg.Server.AllowedOrigins)(handler)
	handler = withLogging(handler)
	return handler
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
