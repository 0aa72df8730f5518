package bundle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/metrics"
	"ui-kit-catalog/internal/model"
)

// ErrEmptySelection is returned when a download is asked for with nothing selected.
var ErrEmptySelection = errors.New("no templates selected")

// Result is a bundle ready to be saved.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Requester turns the current selection and form state into a saved bundle.
type Requester struct {
	client  Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRequester creates a Requester. A nil logger discards output.
func NewRequester(client Client, logger *slog.Logger, m *metrics.Metrics) *Requester {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Requester{
		client:  client,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Fetch requests a bundle for names. It returns ErrEmptySelection without
// contacting the service when names is empty.
func (r *Requester) Fetch(ctx context.Context, names []string, opts model.PackagingOptions) (Result, error) {
	if len(names) == 0 {
		r.metrics.BundleRequested("empty_selection", 0)
		return Result{}, ErrEmptySelection
	}

	req := NewRequest(names, opts)
	start := r.now()
	payload, err := r.client.Bundle(ctx, req)
	elapsed := r.now().Sub(start)
	if err != nil {
		r.metrics.BundleRequested("error", elapsed)
		return Result{}, err
	}
	r.metrics.BundleRequested("ok", elapsed)

	return Result{
		Filename:    Filename(opts.AppName),
		ContentType: payload.ContentType,
		Data:        payload.Data,
	}, nil
}

// Download is Fetch for interactive callers: failures are logged and only
// reported as ok=false, so the user sees nothing happen.
func (r *Requester) Download(ctx context.Context, names []string, opts model.PackagingOptions) (Result, bool) {
	res, err := r.Fetch(ctx, names, opts)
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			r.logger.Debug("Download ignored, selection is empty")
		} else {
			r.logger.Error("Bundle request failed", "error", err, "templates", names, "runnable", opts.Runnable)
		}
		return Result{}, false
	}
	r.logger.Info("Bundle ready", "filename", res.Filename, "bytes", len(res.Data), "templates", names)
	return res, true
}
