package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ui-kit-catalog/internal/model"
)

// ErrStatus is returned when the packaging service answers with a non-2xx status.
var ErrStatus = errors.New("packaging service returned an error status")

// ErrTooLarge is returned when the archive exceeds the client's size cap.
var ErrTooLarge = errors.New("bundle exceeds size limit")

// DefaultMaxBundleBytes caps the archive read from the packaging service.
const DefaultMaxBundleBytes = 64 << 20

var tracer = otel.Tracer("ui-kit-catalog/internal/bundle")

// Payload is the opaque archive returned by the packaging service.
type Payload struct {
	Data        []byte
	ContentType string
}

// Client posts bundle requests.
type Client interface {
	Bundle(ctx context.Context, req model.BundleRequest) (Payload, error)
}

// HTTPClient talks to the packaging service over HTTP.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	// MaxBytes caps the response body; zero means DefaultMaxBundleBytes.
	MaxBytes int64
}

// NewHTTPClient creates a client for the service rooted at baseURL.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

// Bundle POSTs req as JSON and returns the response body untouched.
func (c *HTTPClient) Bundle(ctx context.Context, req model.BundleRequest) (Payload, error) {
	url := c.BaseURL + BundlePath

	ctx, span := tracer.Start(ctx, "bundle.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", url),
			attribute.Int("bundle.templates", len(req.Templates)),
			attribute.Int("bundle.package_type", int(req.PackageType)),
		),
	)
	defer span.End()

	payload, err := c.do(ctx, url, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Payload{}, err
	}
	span.SetAttributes(attribute.Int("bundle.bytes", len(payload.Data)))
	return payload, nil
}

func (c *HTTPClient) do(ctx context.Context, url string, req model.BundleRequest) (Payload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Payload{}, fmt.Errorf("encoding bundle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Payload{}, fmt.Errorf("building bundle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return Payload{}, fmt.Errorf("posting bundle request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBundleBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Payload{}, fmt.Errorf("reading bundle from %s: %w", url, err)
	}
	if int64(len(data)) > limit {
		return Payload{}, fmt.Errorf("%w: more than %d bytes from %s", ErrTooLarge, limit, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payload{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Payload{Data: data, ContentType: contentType}, nil
}
