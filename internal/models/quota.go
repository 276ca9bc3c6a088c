package models

import "time"

// QuotaStatus is the display state for one credential's quota.
type QuotaStatus int

const (
	// QuotaIdle means no fetch has been attempted yet.
	QuotaIdle QuotaStatus = iota
	// QuotaLoading means a fetch is in flight.
	QuotaLoading
	// QuotaSuccess means the last fetch stored usable data.
	QuotaSuccess
	// QuotaError means the last fetch failed.
	QuotaError
)

// String returns the string representation of a QuotaStatus.
func (s QuotaStatus) String() string {
	switch s {
	case QuotaIdle:
		return "idle"
	case QuotaLoading:
		return "loading"
	case QuotaSuccess:
		return "success"
	case QuotaError:
		return "error"
	default:
		return "unknown"
	}
}

// QuotaItem is a named quantity reported by a provider's backend.
// Percent carries either "percent remaining" or "percent used" semantics
// depending on PercentIsUsed. Unlimited overrides percent-based rendering.
type QuotaItem struct {
	Label         string  `json:"label"`
	Percent       float64 `json:"percent"`
	Used          float64 `json:"used,omitempty"`
	Limit         float64 `json:"limit,omitempty"`
	PercentIsUsed bool    `json:"percentIsUsed,omitempty"`
	Unlimited     bool    `json:"unlimited,omitempty"`
}

// PercentRemaining normalizes the item to remaining semantics.
// Returns 100 for unlimited items.
func (q QuotaItem) PercentRemaining() float64 {
	if q.Unlimited {
		return 100
	}
	p := q.Percent
	if q.PercentIsUsed {
		p = 100 - p
	}
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// QuotaState holds everything known about one credential's quota.
// Entries are created lazily on first fetch and overwritten on every
// attempt.
type QuotaState struct {
	FetchedAt  time.Time   `json:"fetchedAt"`
	ResetsAt   time.Time   `json:"resetsAt,omitempty"`
	Credential string      `json:"credential"`
	Provider   Provider    `json:"provider,omitempty"`
	PlanName   string      `json:"planName,omitempty"`
	Message    string      `json:"message,omitempty"`
	Items      []QuotaItem `json:"items,omitempty"`
	StatusCode int         `json:"statusCode,omitempty"`
	Status     QuotaStatus `json:"status"`
}

// WorstPercentRemaining returns the lowest remaining percentage across
// items, or -1 when no item carries a percentage.
func (s *QuotaState) WorstPercentRemaining() float64 {
	worst := -1.0
	for _, item := range s.Items {
		if item.Unlimited {
			continue
		}
		p := item.PercentRemaining()
		if worst < 0 || p < worst {
			worst = p
		}
	}
	return worst
}

// QuotaSnapshot is a point-in-time quota reading persisted to the
// history store.
type QuotaSnapshot struct {
	Timestamp        time.Time
	Credential       string
	Provider         Provider
	PlanName         string
	ID               int64
	PercentRemaining float64
}

// ViewMode selects between the paged card grid and the single-page
// "all items" view.
type ViewMode int

const (
	// ViewPaged shows a bounded, navigable subset of items.
	ViewPaged ViewMode = iota
	// ViewAll shows every item on one page, capped by a hard threshold.
	ViewAll
)

// String returns the string representation of a ViewMode.
func (v ViewMode) String() string {
	if v == ViewAll {
		return "all"
	}
	return "paged"
}
