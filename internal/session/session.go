// Package session keeps the in-memory state behind each rendered page:
// the catalog snapshot, the selection and the download form.
//
// Every full page load creates a new Page, so a reload starts over with an
// empty selection. Pages that see no requests for the TTL are dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/metrics"
	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/internal/selection"
)

// ErrPageNotFound is returned for unknown or expired page IDs.
var ErrPageNotFound = errors.New("page not found")

// Page is the state of one page load.
type Page struct {
	ID        string
	Catalog   []model.Template
	Selection *selection.Set

	mu       sync.Mutex
	options  model.PackagingOptions
	lastSeen time.Time
}

// Options returns the current download form state.
func (p *Page) Options() model.PackagingOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.options
}

// SetOptions replaces the download form state.
func (p *Page) SetOptions(opts model.PackagingOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = opts
}

// Lookup finds a catalog entry by name and returns its catalog position.
func (p *Page) Lookup(name string) (model.Template, int, bool) {
	for i, t := range p.Catalog {
		if t.Name == name {
			return t, i, true
		}
	}
	return model.Template{}, -1, false
}

// Toggle flips name in the page's selection against the page's catalog.
func (p *Page) Toggle(name string) bool {
	return p.Selection.Toggle(name, p.Catalog)
}

func (p *Page) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

func (p *Page) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Manager owns every live Page.
type Manager struct {
	mu      sync.RWMutex
	pages   map[string]*Page
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		pages:   make(map[string]*Page),
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Create registers a new page over catalog with an empty selection.
func (m *Manager) Create(catalog []model.Template) *Page {
	page := &Page{
		ID:        uuid.New().String(),
		Catalog:   catalog,
		Selection: selection.New(),
		lastSeen:  m.now(),
	}

	m.mu.Lock()
	m.pages[page.ID] = page
	n := len(m.pages)
	m.mu.Unlock()

	m.metrics.PagesActive(n)
	m.logger.Debug("Page created", "page_id", page.ID, "templates", len(catalog))
	return page
}

// Get returns the page with id and marks it as used.
func (m *Manager) Get(id string) (*Page, error) {
	m.mu.RLock()
	page, ok := m.pages[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrPageNotFound
	}
	page.touch(m.now())
	return page, nil
}

// Len returns the number of live pages.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// Sweep drops pages idle for longer than the TTL and returns how many went.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, page := range m.pages {
		if page.idleSince().Before(cutoff) {
			delete(m.pages, id)
			removed++
		}
	}
	n := len(m.pages)
	m.mu.Unlock()

	if removed > 0 {
		m.metrics.PagesActive(n)
		m.logger.Debug("Expired idle pages", "removed", removed, "remaining", n)
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
