// Package catalog loads the template catalog, substituting a built-in
// descriptor set whenever the service response is unusable.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/metrics"
	"ui-kit-catalog/internal/model"
)

// Outcome classifies a catalog load.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeEmpty       Outcome = "empty"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeUnreachable Outcome = "unreachable"
)

// Loader turns a Source into a template list. It never fails.
type Loader struct {
	source   Source
	fallback []model.Template
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithFallback replaces the built-in fallback set.
func WithFallback(templates []model.Template) Option {
	return func(l *Loader) {
		l.fallback = templates
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records load outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader creates a Loader reading from source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		fallback: Fallback(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the catalog once. Network failures, empty bodies and bodies
// that are not a descriptor array all yield the fallback set.
func (l *Loader) Load(ctx context.Context) []model.Template {
	templates, outcome := l.load(ctx)
	l.metrics.CatalogLoaded(string(outcome))
	return templates
}

func (l *Loader) load(ctx context.Context) ([]model.Template, Outcome) {
	body, err := l.source.Fetch(ctx)
	if err != nil {
		l.logger.Warn("Catalog unreachable, using fallback templates", "error", err, "fallback_count", len(l.fallback))
		return l.fallbackCopy(), OutcomeUnreachable
	}

	templates, outcome := Decode(body)
	switch outcome {
	case OutcomeOK:
		l.logger.Debug("Catalog loaded", "count", len(templates))
		return templates, outcome
	case OutcomeEmpty:
		l.logger.Info("Catalog returned an empty body, using fallback templates", "fallback_count", len(l.fallback))
	default:
		l.logger.Warn("Catalog body is not a template list, using fallback templates", "bytes", len(body), "fallback_count", len(l.fallback))
	}
	return l.fallbackCopy(), outcome
}

func (l *Loader) fallbackCopy() []model.Template {
	out := make([]model.Template, len(l.fallback))
	copy(out, l.fallback)
	return out
}

// Decode parses a catalog body. A JSON null is malformed; an empty array is
// a valid, empty catalog.
func Decode(body []byte) ([]model.Template, Outcome) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, OutcomeEmpty
	}

	var templates []model.Template
	if err := json.Unmarshal(trimmed, &templates); err != nil || templates == nil {
		return nil, OutcomeMalformed
	}
	return templates, OutcomeOK
}
