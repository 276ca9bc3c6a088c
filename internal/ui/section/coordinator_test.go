package section

import "testing"

func TestRefreshCoordinator_FullCycle(t *testing.T) {
	var c RefreshCoordinator

	if !c.Request() {
		t.Fatal("Request from idle should signal the reload")
	}
	if c.Phase() != PhaseRequested {
		t.Errorf("Phase = %s, want requested", c.Phase())
	}

	// Reload starts
	if c.ObserveLoading(true) {
		t.Error("loading rising edge should not fire the fetch")
	}
	if c.Phase() != PhaseWaitingForReload {
		t.Errorf("Phase = %s, want waiting", c.Phase())
	}

	// Reload finishes
	if !c.ObserveLoading(false) {
		t.Error("falling edge after a request should fire the fetch")
	}
	if c.Phase() != PhaseFetching {
		t.Errorf("Phase = %s, want fetching", c.Phase())
	}

	// Another falling observation must not fire again
	if c.ObserveLoading(false) {
		t.Error("fetch should fire exactly once per cycle")
	}

	c.FetchDone()
	if c.Phase() != PhaseIdle {
		t.Errorf("Phase = %s, want idle", c.Phase())
	}
}

func TestRefreshCoordinator_NoSpontaneousFetch(t *testing.T) {
	var c RefreshCoordinator

	// Unrelated loading flips with no request pending
	if c.ObserveLoading(true) {
		t.Error("fetch fired without a request")
	}
	if c.ObserveLoading(false) {
		t.Error("fetch fired without a request")
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Phase = %s, want idle", c.Phase())
	}
}

func TestRefreshCoordinator_InitialFalseIsNotAnEdge(t *testing.T) {
	var c RefreshCoordinator
	c.Request()

	// Loading starts false on mount; observing it again is not a
	// falling edge and must not fire
	if c.ObserveLoading(false) {
		t.Error("level-triggered fire on initial false")
	}
	if c.Phase() != PhaseRequested {
		t.Errorf("Phase = %s, want requested", c.Phase())
	}

	if c.ObserveLoading(true) {
		t.Error("rising edge fired the fetch")
	}
	if !c.ObserveLoading(false) {
		t.Error("falling edge should fire the fetch")
	}
}

func TestRefreshCoordinator_RequestDuringRunningReload(t *testing.T) {
	var c RefreshCoordinator

	// A reload is already in flight when the user asks to refresh,
	// e.g. another section triggered it
	c.ObserveLoading(true)
	if !c.Request() {
		t.Fatal("request during a foreign reload should be accepted")
	}

	// The reload's completion edge satisfies the request; without it
	// the coordinator would sit in requested forever
	if !c.ObserveLoading(false) {
		t.Fatal("falling edge should fire the fetch for the pending request")
	}
	if c.Phase() != PhaseFetching {
		t.Errorf("Phase = %s, want fetching", c.Phase())
	}

	c.FetchDone()
	if !c.Request() {
		t.Error("coordinator should accept a new request after the cycle")
	}
}

func TestRefreshCoordinator_RequestDuringCycleAbsorbed(t *testing.T) {
	var c RefreshCoordinator
	c.Request()
	c.ObserveLoading(true)

	if c.Request() {
		t.Error("request during an active cycle should be absorbed")
	}

	if !c.ObserveLoading(false) {
		t.Error("original cycle should still fire once")
	}
	c.FetchDone()

	// A fresh request after the cycle works again
	if !c.Request() {
		t.Error("request after the cycle should signal the reload")
	}
}
