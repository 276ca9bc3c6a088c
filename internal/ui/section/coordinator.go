// Package section renders one provider's quota cards and coordinates
// refreshes against the credential list.
package section

// RefreshPhase is one step of the refresh cycle.
type RefreshPhase int

const (
	// PhaseIdle means no refresh is in progress.
	PhaseIdle RefreshPhase = iota
	// PhaseRequested means the user asked for a refresh and the
	// credential reload has been signalled.
	PhaseRequested
	// PhaseWaitingForReload means the credential reload is running.
	PhaseWaitingForReload
	// PhaseFetching means the quota fan-out is running.
	PhaseFetching
)

// String returns the phase name.
func (p RefreshPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequested:
		return "requested"
	case PhaseWaitingForReload:
		return "waiting"
	case PhaseFetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// RefreshCoordinator sequences a user-initiated refresh against the
// asynchronous credential reload. The quota fetch fires exactly once
// per request, only after the reload's loading flag falls back to
// false.
type RefreshCoordinator struct {
	phase       RefreshPhase
	lastLoading bool
}

// Phase returns the current refresh phase.
func (c *RefreshCoordinator) Phase() RefreshPhase {
	return c.phase
}

// Request marks a refresh as pending. It reports whether the caller
// should signal the credential reload; a request during an active
// cycle is absorbed.
func (c *RefreshCoordinator) Request() bool {
	if c.phase != PhaseIdle {
		return false
	}
	c.phase = PhaseRequested
	return true
}

// ObserveLoading feeds the coordinator the latest loading flag. It
// returns true exactly when the quota fetch should start: a true to
// false transition while a refresh is pending. Flag flips without a
// pending request never trigger a fetch.
func (c *RefreshCoordinator) ObserveLoading(loading bool) bool {
	fire := false
	switch c.phase {
	case PhaseRequested:
		if loading {
			c.phase = PhaseWaitingForReload
		} else if c.lastLoading {
			// The reload was already running when the request came
			// in; its completion edge still satisfies the request.
			c.phase = PhaseFetching
			fire = true
		}
	case PhaseWaitingForReload:
		if c.lastLoading && !loading {
			c.phase = PhaseFetching
			fire = true
		}
	}
	c.lastLoading = loading
	return fire
}

// FetchDone reports the fan-out finished and closes the cycle.
func (c *RefreshCoordinator) FetchDone() {
	if c.phase == PhaseFetching {
		c.phase = PhaseIdle
	}
}
