package templating

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
)

// Part is one named template and the data it is executed with.
type Part struct {
	Name string
	Data any
}

// Engine handles template parsing and execution.
type Engine struct {
	templates *template.Template
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

// NewEngine parses every *.html file in fsys into a single template set.
func NewEngine(fsys fs.FS) (*Engine, error) {
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("error finding html templates: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no template files (.html) found")
	}

	tmplSet, err := template.New("ui").Funcs(Funcs).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Engine{templates: tmplSet}, nil
}

// Render executes the named template into w. Nothing is written on error.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	return e.RenderAll(w, Part{Name: name, Data: data})
}

// RenderAll executes each part in order, as used for htmx responses carrying
// out-of-band swaps next to the main fragment. Output is buffered so a
// failing part leaves w untouched.
func (e *Engine) RenderAll(w io.Writer, parts ...Part) error {
	var buf bytes.Buffer
	for _, p := range parts {
		if e.templates.Lookup(p.Name) == nil {
			return fmt.Errorf("template %q is not defined", p.Name)
		}
		if err := e.templates.ExecuteTemplate(&buf, p.Name, p.Data); err != nil {
			return fmt.Errorf("failed to execute template '%s': %w", p.Name, err)
		}
	}
	_, err := buf.WriteTo(w)
	return err
}
