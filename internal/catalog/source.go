package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ui-kit-catalog/internal/storage"
)

// PlatformTemplatesPath is the catalog endpoint on the template service.
const PlatformTemplatesPath = "/api/Template/PlatformTemplates"

var tracer = otel.Tracer("ui-kit-catalog/internal/catalog")

// Source returns the raw catalog response body.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// DefaultMaxCatalogBytes caps the catalog body read from the template service.
const DefaultMaxCatalogBytes = 8 << 20

// HTTPSource fetches the catalog from the template service.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	// MaxBytes caps the response body; zero means DefaultMaxCatalogBytes.
	MaxBytes int64
}

// NewHTTPSource creates a source for the service rooted at baseURL.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

// Fetch issues one GET and returns the body whatever the status code;
// the loader decides whether the body is usable.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	url := s.BaseURL + PlatformTemplatesPath

	ctx, span := tracer.Start(ctx, "catalog.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", url)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetching catalog from %s: %w", url, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxCatalogBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err == nil && int64(len(body)) > limit {
		err = fmt.Errorf("catalog body exceeds %d bytes", limit)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading catalog body from %s: %w", url, err)
	}
	return body, nil
}

// StoreSource adapts a TemplateStore into a Source, for running against a
// local descriptor file instead of the remote service.
type StoreSource struct {
	Store storage.TemplateStore
}

// Fetch encodes the store contents as the service would return them.
func (s StoreSource) Fetch(ctx context.Context) ([]byte, error) {
	templates, err := s.Store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog from %s: %w", s.Store.Location(), err)
	}
	return Encode(templates)
}
