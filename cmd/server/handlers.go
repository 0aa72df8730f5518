package main

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"

	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/internal/session"
	"ui-kit-catalog/internal/templating"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func pageURL(page *session.Page) string {
	return "/p/" + page.ID
}

// render writes the parts as one HTML response.
func (app *application) render(w http.ResponseWriter, parts ...templating.Part) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := app.engine.RenderAll(w, parts...); err != nil {
		app.logger.Error("Error executing template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// currentPage resolves {pageID}. Unknown or expired pages send the browser
// back to / for a fresh mount and report nil.
func (app *application) currentPage(w http.ResponseWriter, r *http.Request) *session.Page {
	id := chi.URLParam(r, "pageID")
	page, err := app.pages.Get(id)
	if err == nil {
		return page
	}
	if errors.Is(err, session.ErrPageNotFound) {
		app.logger.Info("Page expired or unknown, remounting", "page_id", id)
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// homeHandler mounts a new page: one catalog load, empty selection.
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	templates := app.loader.Load(r.Context())
	page := app.pages.Create(templates)
	app.render(w, templating.Part{Name: "layout", Data: templating.NewPageView(page, nosurf.Token(r))})
}

// pageHandler re-renders an existing mount.
func (app *application) pageHandler(w http.ResponseWriter, r *http.Request) {
	page := app.currentPage(w, r)
	if page == nil {
		return
	}
	name := "layout"
	if isHTMX(r) {
		name = "page"
	}
	app.render(w, templating.Part{Name: name, Data: templating.NewPageView(page, nosurf.Token(r))})
}

// toggleHandler flips one template in or out of the selection. htmx gets
// the panel plus the card checkbox as an out-of-band swap.
func (app *application) toggleHandler(w http.ResponseWriter, r *http.Request) {
	page := app.currentPage(w, r)
	if page == nil {
		return
	}

	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}

	selected := page.Toggle(name)
	app.metrics.SelectionToggled(selected)
	if page.Selection.Len() == 0 {
		// the download form goes away with the last selection and comes back blank
		page.SetOptions(model.PackagingOptions{})
	}
	app.logger.Debug("Selection toggled", "page_id", page.ID, "template", name, "selected", selected, "count", page.Selection.Len())

	if !isHTMX(r) {
		http.Redirect(w, r, pageURL(page), http.StatusSeeOther)
		return
	}

	token := nosurf.Token(r)
	parts := []templating.Part{{Name: "panel", Data: templating.NewPageView(page, token)}}
	if t, idx, ok := page.Lookup(name); ok {
		card := templating.NewCardView(page, idx, t, token)
		card.OOB = true
		parts = append(parts, templating.Part{Name: "card-select", Data: card})
	}
	app.render(w, parts...)
}

// optionsHandler stores the download form fields.
func (app *application) optionsHandler(w http.ResponseWriter, r *http.Request) {
	page := app.currentPage(w, r)
	if page == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.logger.Warn("Error parsing options form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	page.SetOptions(optionsFromForm(r.PostForm, page.Options()))

	if !isHTMX(r) {
		http.Redirect(w, r, pageURL(page), http.StatusSeeOther)
		return
	}
	app.render(w, templating.Part{Name: "download-form", Data: templating.NewPageView(page, nosurf.Token(r))})
}

// downloadHandler requests the bundle for the current selection. Anything
// short of a bundle is answered with 204 so the browser stays put.
func (app *application) downloadHandler(w http.ResponseWriter, r *http.Request) {
	page := app.currentPage(w, r)
	if page == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.logger.Warn("Error parsing download form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	opts := optionsFromForm(r.PostForm, page.Options())
	page.SetOptions(opts)

	res, ok := app.requester.Download(r.Context(), page.Selection.Names(), opts)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if _, err := w.Write(res.Data); err != nil {
		app.logger.Error("Error writing bundle", "error", err)
	}
}

// optionsFromForm applies the submitted fields over prev. Fields missing
// from the form keep their previous value, since browsers omit disabled
// inputs.
func optionsFromForm(form url.Values, prev model.PackagingOptions) model.PackagingOptions {
	opts := prev
	if v, ok := form["package_type"]; ok && len(v) > 0 {
		opts.Runnable = v[0] == "runnable"
	}
	if v, ok := form["app_name"]; ok && len(v) > 0 {
		opts.AppName = v[0]
	}
	if v, ok := form["startup_page"]; ok && len(v) > 0 {
		opts.StartupPage = v[0]
	}
	return opts
}
