package layout

import "github.com/quotadeck/quotadeck/internal/models"

const (
	// AllViewThreshold is the largest item count the all view will
	// render. Beyond it the window stays paged regardless of what the
	// caller asks for.
	AllViewThreshold = 30

	// maxPageSize caps a page in paged mode even on very wide
	// terminals.
	maxPageSize = 14

	// rowsPerPage is how many card rows a page shows in paged mode.
	rowsPerPage = 3
)

// PageWindow slices an item list into pages sized by the current
// column count. Pages are numbered from 1.
type PageWindow[T any] struct {
	items   []T
	mode    models.ViewMode
	page    int
	columns int
}

// NewPageWindow creates a paged window over no items with a single
// column.
func NewPageWindow[T any]() *PageWindow[T] {
	return &PageWindow[T]{
		mode:    models.ViewPaged,
		page:    1,
		columns: 1,
	}
}

// SetItems replaces the item list. The current page is re-clamped and
// an all view with too many items falls back to paged.
func (w *PageWindow[T]) SetItems(items []T) {
	w.items = items
	if w.mode == models.ViewAll && !w.CanShowAll() {
		w.mode = models.ViewPaged
		w.page = 1
	}
	w.clampPage()
}

// SetColumns updates the column count used to size pages.
func (w *PageWindow[T]) SetColumns(columns int) {
	if columns < 1 {
		columns = 1
	}
	w.columns = columns
	w.clampPage()
}

// Items returns the full item list.
func (w *PageWindow[T]) Items() []T {
	return w.items
}

// Len returns the total item count.
func (w *PageWindow[T]) Len() int {
	return len(w.items)
}

// Mode returns the current view mode.
func (w *PageWindow[T]) Mode() models.ViewMode {
	return w.mode
}

// CanShowAll reports whether the item count is small enough for the
// all view. Both the mode toggle and the fallback on item growth use
// this same check.
func (w *PageWindow[T]) CanShowAll() bool {
	return len(w.items) <= AllViewThreshold
}

// SetMode switches the view mode and resets to the first page. A
// request for the all view is refused when the item count exceeds the
// threshold; the return value reports whether the mode was applied.
func (w *PageWindow[T]) SetMode(mode models.ViewMode) bool {
	if mode == models.ViewAll && !w.CanShowAll() {
		return false
	}
	if mode != w.mode {
		w.mode = mode
		w.page = 1
	}
	return true
}

// ToggleMode flips between paged and all view, reporting whether the
// switch happened.
func (w *PageWindow[T]) ToggleMode() bool {
	if w.mode == models.ViewAll {
		return w.SetMode(models.ViewPaged)
	}
	return w.SetMode(models.ViewAll)
}

// PageSize returns how many items one page holds. The all view sizes
// the page to the whole list.
func (w *PageWindow[T]) PageSize() int {
	if w.mode == models.ViewAll {
		if len(w.items) < 1 {
			return 1
		}
		return len(w.items)
	}
	size := w.columns * rowsPerPage
	if size > maxPageSize {
		size = maxPageSize
	}
	if size < 1 {
		size = 1
	}
	return size
}

// TotalPages returns the page count, at least one even when empty.
func (w *PageWindow[T]) TotalPages() int {
	size := w.PageSize()
	pages := (len(w.items) + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// CurrentPage returns the 1-based page number.
func (w *PageWindow[T]) CurrentPage() int {
	return w.page
}

// NextPage advances one page, stopping at the last.
func (w *PageWindow[T]) NextPage() {
	if w.page < w.TotalPages() {
		w.page++
	}
}

// PrevPage steps back one page, stopping at the first.
func (w *PageWindow[T]) PrevPage() {
	if w.page > 1 {
		w.page--
	}
}

// Visible returns the slice of items on the current page.
func (w *PageWindow[T]) Visible() []T {
	size := w.PageSize()
	start := (w.page - 1) * size
	if start >= len(w.items) {
		return nil
	}
	end := start + size
	if end > len(w.items) {
		end = len(w.items)
	}
	return w.items[start:end]
}

func (w *PageWindow[T]) clampPage() {
	total := w.TotalPages()
	if w.page > total {
		w.page = total
	}
	if w.page < 1 {
		w.page = 1
	}
}
