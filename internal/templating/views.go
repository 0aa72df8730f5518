package templating

import (
	"ui-kit-catalog/internal/deptree"
	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/internal/session"
)

// PageView is the data behind the "layout", "page", "panel" and
// "download-form" templates.
type PageView struct {
	PageID    string
	CSRFToken string
	Cards     []CardView
	Selected  []model.Template
	Options   model.PackagingOptions
}

// CardView is the data behind one "card" and its "card-select" form.
type CardView struct {
	Index     int
	PageID    string
	CSRFToken string
	Template  model.Template
	Tree      deptree.Tree
	Selected  bool
	OOB       bool // rendered as an htmx out-of-band swap
}

// NewPageView snapshots page for rendering.
func NewPageView(page *session.Page, csrfToken string) PageView {
	view := PageView{
		PageID:    page.ID,
		CSRFToken: csrfToken,
		Cards:     make([]CardView, 0, len(page.Catalog)),
		Selected:  page.Selection.Items(),
		Options:   page.Options(),
	}
	for i, t := range page.Catalog {
		view.Cards = append(view.Cards, NewCardView(page, i, t, csrfToken))
	}
	return view
}

// NewCardView builds the card for the catalog entry at index.
func NewCardView(page *session.Page, index int, t model.Template, csrfToken string) CardView {
	return CardView{
		Index:     index,
		PageID:    page.ID,
		CSRFToken: csrfToken,
		Template:  t,
		Tree:      deptree.Build(t.Name, t.Dependencies),
		Selected:  page.Selection.IsSelected(t.Name),
	}
}
