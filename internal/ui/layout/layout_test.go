package layout

import (
	"testing"

	"github.com/quotadeck/quotadeck/internal/models"
)

func TestColumnEstimator(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"unattached", 0, 1},
		{"narrow", 37, 1},
		{"one column exactly", 38, 1},
		{"two columns", 80, 2},
		{"three columns", 120, 3},
		{"wide", 200, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var est ColumnEstimator
			est.SetWidth(tt.width)
			if got := est.Columns(); got != tt.want {
				t.Errorf("Columns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func newWindow(n, columns int) *PageWindow[int] {
	w := NewPageWindow[int]()
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	w.SetItems(items)
	w.SetColumns(columns)
	return w
}

func TestPageWindow_PageSize(t *testing.T) {
	tests := []struct {
		name    string
		items   int
		columns int
		want    int
	}{
		{"one column", 40, 1, 3},
		{"two columns", 40, 2, 6},
		{"three columns", 40, 3, 9},
		{"capped at fourteen", 40, 5, 14},
		{"empty list", 0, 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWindow(tt.items, tt.columns)
			if got := w.PageSize(); got != tt.want {
				t.Errorf("PageSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPageWindow_TotalPages(t *testing.T) {
	w := newWindow(40, 3)
	// 40 items at 9 per page
	if got := w.TotalPages(); got != 5 {
		t.Errorf("TotalPages() = %d, want 5", got)
	}

	empty := newWindow(0, 3)
	if got := empty.TotalPages(); got != 1 {
		t.Errorf("TotalPages() on empty = %d, want 1", got)
	}
}

func TestPageWindow_Navigation(t *testing.T) {
	w := newWindow(40, 3)

	w.PrevPage()
	if w.CurrentPage() != 1 {
		t.Errorf("PrevPage at first page moved to %d", w.CurrentPage())
	}

	for i := 0; i < 10; i++ {
		w.NextPage()
	}
	if w.CurrentPage() != 5 {
		t.Errorf("NextPage past last page gave %d, want 5", w.CurrentPage())
	}

	last := w.Visible()
	// Page 5 holds items 36..39
	if len(last) != 4 {
		t.Errorf("last page has %d items, want 4", len(last))
	}
	if last[0] != 36 {
		t.Errorf("last page starts at %d, want 36", last[0])
	}
}

func TestPageWindow_ClampOnShrink(t *testing.T) {
	w := newWindow(40, 3)
	for i := 0; i < 4; i++ {
		w.NextPage()
	}
	if w.CurrentPage() != 5 {
		t.Fatalf("setup: CurrentPage() = %d, want 5", w.CurrentPage())
	}

	items := make([]int, 10)
	w.SetItems(items)
	if w.CurrentPage() != 2 {
		t.Errorf("after shrink CurrentPage() = %d, want 2", w.CurrentPage())
	}

	w.SetItems(nil)
	if w.CurrentPage() != 1 {
		t.Errorf("after empty CurrentPage() = %d, want 1", w.CurrentPage())
	}
}

func TestPageWindow_ClampOnResize(t *testing.T) {
	w := newWindow(40, 1)
	for w.CurrentPage() < w.TotalPages() {
		w.NextPage()
	}
	// 14 pages of 3 at one column; widening to 5 columns leaves 3 pages
	w.SetColumns(5)
	if w.CurrentPage() != w.TotalPages() {
		t.Errorf("CurrentPage() = %d, want clamped to %d", w.CurrentPage(), w.TotalPages())
	}
}

func TestPageWindow_ModeSwitch(t *testing.T) {
	w := newWindow(20, 3)
	w.NextPage()
	if w.CurrentPage() != 2 {
		t.Fatalf("setup: CurrentPage() = %d, want 2", w.CurrentPage())
	}

	if !w.SetMode(models.ViewAll) {
		t.Fatal("SetMode(all) should succeed under the threshold")
	}
	if w.CurrentPage() != 1 {
		t.Errorf("mode switch should reset to page 1, got %d", w.CurrentPage())
	}
	if w.PageSize() != 20 {
		t.Errorf("all view PageSize() = %d, want 20", w.PageSize())
	}
	if w.TotalPages() != 1 {
		t.Errorf("all view TotalPages() = %d, want 1", w.TotalPages())
	}
	if len(w.Visible()) != 20 {
		t.Errorf("all view shows %d items, want 20", len(w.Visible()))
	}
}

func TestPageWindow_AllViewThreshold(t *testing.T) {
	w := newWindow(31, 3)
	if w.SetMode(models.ViewAll) {
		t.Error("SetMode(all) should refuse above the threshold")
	}
	if w.Mode() != models.ViewPaged {
		t.Errorf("Mode() = %s, want paged", w.Mode())
	}

	// Exactly at the threshold is allowed
	w = newWindow(AllViewThreshold, 3)
	if !w.SetMode(models.ViewAll) {
		t.Error("SetMode(all) should succeed at the threshold")
	}
}

func TestPageWindow_AllViewFallbackOnGrowth(t *testing.T) {
	w := newWindow(10, 3)
	if !w.SetMode(models.ViewAll) {
		t.Fatal("SetMode(all) should succeed")
	}

	items := make([]int, AllViewThreshold+5)
	w.SetItems(items)
	if w.Mode() != models.ViewPaged {
		t.Errorf("growth past threshold should fall back to paged, got %s", w.Mode())
	}
	if w.CurrentPage() != 1 {
		t.Errorf("fallback should land on page 1, got %d", w.CurrentPage())
	}
}

func TestPageWindow_ToggleMode(t *testing.T) {
	w := newWindow(10, 2)
	if !w.ToggleMode() {
		t.Fatal("toggle to all view should succeed")
	}
	if w.Mode() != models.ViewAll {
		t.Errorf("Mode() = %s, want all", w.Mode())
	}
	if !w.ToggleMode() {
		t.Fatal("toggle back to paged should succeed")
	}
	if w.Mode() != models.ViewPaged {
		t.Errorf("Mode() = %s, want paged", w.Mode())
	}
}
