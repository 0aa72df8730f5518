package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ui-kit-catalog/web"
)

// routes sets up the HTTP router for the catalog UI.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- Static file server ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.StripSlashes)
		fs := http.FileServer(http.FS(web.Static()))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if app.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	}

	// --- Pages ---
	r.Group(func(r chi.Router) {
		if app.cfg.Server.CSRF {
			r.Use(app.csrf)
		}
		r.Get("/", app.homeHandler)
		r.Route("/p/{pageID}", func(r chi.Router) {
			r.Get("/", app.pageHandler)
			r.Post("/toggle/{name}", app.toggleHandler)
			r.Post("/options", app.optionsHandler)
			r.Post("/download", app.downloadHandler)
		})
	})

	return r
}

// csrf rejects form posts without a valid nosurf token.
func (app *application) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
	}))
	return h
}
