// Package httpserver exposes the application services over a JSON HTTP API.
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tinytales/tinytales-server/internal/service"
)

// Server wires the application services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	stories  service.StoryService
	generate service.GenerateService
	exports  service.ExportService
	profile  service.ProfileService
	log      *zap.Logger
}

// New constructs a Server.
func New(
	auth service.AuthService,
	stories service.StoryService,
	generate service.GenerateService,
	exports service.ExportService,
	profile service.ProfileService,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:     auth,
		stories:  stories,
		generate: generate,
		exports:  exports,
		profile:  profile,
		log:      log,
	}
}

// Routes builds the router with all API endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		// public catalogue needs no token
		r.Get("/public/stories", s.handleListPublic)
		r.Get("/public/stories/{storyID}", s.handleGetPublic)

		r.Group(func(r chi.Router) {
			r.Use(s.Auth)

			r.Get("/stories", s.handleListOwn)
			r.Post("/stories", s.handleCreateStory)
			r.Post("/stories/generate", s.handleGenerate)
			r.Get("/stories/{storyID}", s.handleGetStory)
			r.Put("/stories/{storyID}", s.handleUpdateStory)
			r.Delete("/stories/{storyID}", s.handleDeleteStory)
			r.Put("/stories/{storyID}/visibility", s.handleSetVisibility)
			r.Post("/stories/{storyID}/visibility/toggle", s.handleToggleVisibility)
			r.Get("/stories/{storyID}/export", s.handleExport)

			r.Get("/stories/recent", s.handleRecentStories)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/profile/password", s.handleChangePassword)
			r.Get("/profile/stats", s.handleStats)
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handleSavePreferences)
		})
	})

	return r
}
