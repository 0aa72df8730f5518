// Package devstub serves the template and packaging endpoints locally so the
// UI and CLI can run without the remote service.
package devstub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ui-kit-catalog/internal/bundle"
	"ui-kit-catalog/internal/catalog"
	"ui-kit-catalog/internal/generator"
	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/model"
)

// Server answers catalog and bundle requests from a fixed template list.
type Server struct {
	templates []model.Template
	generator generator.Config
	logger    *slog.Logger
}

// New creates a stub serving templates.
func New(templates []model.Template, gen generator.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{templates: templates, generator: gen, logger: logger}
}

// Routes returns the stub's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get(catalog.PlatformTemplatesPath, s.templatesHandler)
	r.Post(bundle.BundlePath, s.bundleHandler)
	return r
}

func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	body, err := catalog.Encode(s.templates)
	if err != nil {
		s.logger.Error("Failed to encode stub catalog", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		s.logger.Error("Error writing stub catalog", "error", err)
	}
}

func (s *Server) bundleHandler(w http.ResponseWriter, r *http.Request) {
	var req model.BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Invalid bundle request body", "error", err)
		http.Error(w, "Bad Request - Invalid JSON", http.StatusBadRequest)
		return
	}
	s.logger.Info("Bundle requested", "templates", req.Templates, "package_type", req.PackageType, "app_name", req.AppName)

	data, err := generator.GenerateBundle(s.generator, s.templates, req)
	if err != nil {
		s.logger.Warn("Cannot build bundle", "error", err)
		http.Error(w, "Bad Request - "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Error writing bundle", "error", err)
	}
}
