package quota

import (
	"context"
	"sync"
	"time"

	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
)

// Orchestrator coordinates usage lookups across credentials and caches
// the latest state per credential.
type Orchestrator struct {
	states map[string]*models.QuotaState
	lookup UsageLookup
	mu     sync.RWMutex
	gens   map[models.Provider]uint64
	busy   bool
}

// NewOrchestrator creates a quota orchestrator backed by the given
// lookup service.
func NewOrchestrator(lookup UsageLookup) *Orchestrator {
	return &Orchestrator{
		lookup: lookup,
		states: make(map[string]*models.QuotaState),
		gens:   make(map[models.Provider]uint64),
	}
}

// State returns the cached state for a credential, or nil if none
// exists.
func (o *Orchestrator) State(id string) *models.QuotaState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.states[id]
}

// States returns a snapshot of all cached states keyed by credential.
func (o *Orchestrator) States() map[string]*models.QuotaState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]*models.QuotaState, len(o.states))
	for id, st := range o.states {
		out[id] = st
	}
	return out
}

// Busy reports whether a FetchAll pass is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.busy
}

// Clear discards all cached state. In-flight fetches started before
// the clear will not repopulate the cache.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for p := range o.gens {
		o.gens[p]++
	}
	o.states = make(map[string]*models.QuotaState)
}

// ClearProvider discards cached state for one provider's credentials,
// leaving the other provider's entries and in-flight fetches alone.
// Returns the credential ids that were cleared.
func (o *Orchestrator) ClearProvider(provider models.Provider) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gens[provider]++

	var cleared []string
	for id, st := range o.states {
		if st.Provider == provider {
			cleared = append(cleared, id)
			delete(o.states, id)
		}
	}
	return cleared
}

// FetchOne fetches usage for a single credential and stores the
// result. The cached state moves to loading immediately so callers can
// render a spinner while the lookup runs.
func (o *Orchestrator) FetchOne(ctx context.Context, cred models.Credential) *models.QuotaState {
	o.mu.Lock()
	gen := o.gens[cred.Provider]
	o.gens[cred.Provider] = gen
	o.states[cred.ID()] = &models.QuotaState{
		Credential: cred.ID(),
		Provider:   cred.Provider,
		Status:     models.QuotaLoading,
	}
	o.mu.Unlock()

	state := o.fetch(ctx, cred)

	o.mu.Lock()
	if o.gens[cred.Provider] == gen {
		o.states[cred.ID()] = state
	}
	o.mu.Unlock()
	return state
}

// FetchAll fetches usage for every credential concurrently and waits
// for all lookups to finish. A second call while one is in flight
// returns immediately.
func (o *Orchestrator) FetchAll(ctx context.Context, creds []models.Credential) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return
	}
	o.busy = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	var wg sync.WaitGroup
	for _, cred := range creds {
		wg.Add(1)
		go func(c models.Credential) {
			defer wg.Done()
			o.FetchOne(ctx, c)
		}(cred)
	}
	wg.Wait()
}

// fetch performs one lookup and converts the outcome into a card
// state. Empty usage is informational rather than an error.
func (o *Orchestrator) fetch(ctx context.Context, cred models.Credential) *models.QuotaState {
	state := &models.QuotaState{
		Credential: cred.ID(),
		Provider:   cred.Provider,
		FetchedAt:  time.Now(),
	}

	usage, err := o.lookup.FetchUsage(ctx, cred)
	if err != nil {
		logger.Warn("quota fetch failed", "credential", cred.Name, "error", err)
		state.Status = models.QuotaError
		state.Message = UserMessage(err)
		state.StatusCode = StatusCode(err)
		return state
	}

	state.Status = models.QuotaSuccess
	state.PlanName = usage.PlanName
	state.ResetsAt = usage.ResetsAt
	state.Items = usage.Items
	if len(usage.Items) == 0 {
		state.Message = "no usage data reported"
	}
	return state
}
