package quota

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/quotadeck/quotadeck/internal/models"
)

// MockLookup implements UsageLookup for testing
type MockLookup struct {
	FetchFunc func(ctx context.Context, cred models.Credential) (*Usage, error)
	calls     atomic.Int64
}

func (m *MockLookup) FetchUsage(ctx context.Context, cred models.Credential) (*Usage, error) {
	m.calls.Add(1)
	return m.FetchFunc(ctx, cred)
}

func TestOrchestrator_FetchOne_Success(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return &Usage{
				PlanName: "pro",
				Items:    []models.QuotaItem{{Label: "Credits", Percent: 80}},
			}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	cred := models.Credential{Name: "work", Provider: models.ProviderKiro}

	state := orch.FetchOne(context.Background(), cred)
	if state.Status != models.QuotaSuccess {
		t.Errorf("Status = %s, want success", state.Status)
	}
	if state.PlanName != "pro" {
		t.Errorf("PlanName = %s, want pro", state.PlanName)
	}
	if got := orch.State("work"); got != state {
		t.Errorf("State() = %v, want the fetched state", got)
	}
}

func TestOrchestrator_FetchOne_Error(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return nil, &StatusError{Message: "usage request failed", Code: 404}
		},
	}

	orch := NewOrchestrator(lookup)
	state := orch.FetchOne(context.Background(), models.Credential{Name: "work", Provider: models.ProviderCopilot})

	if state.Status != models.QuotaError {
		t.Errorf("Status = %s, want error", state.Status)
	}
	if state.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", state.StatusCode)
	}
	if state.Message == "" {
		t.Error("Message should be set on error")
	}
}

func TestOrchestrator_FetchOne_EmptyUsage(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return &Usage{}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	state := orch.FetchOne(context.Background(), models.Credential{Name: "work", Provider: models.ProviderKiro})

	// Empty usage is informational, not an error
	if state.Status != models.QuotaSuccess {
		t.Errorf("Status = %s, want success", state.Status)
	}
	if state.Message == "" {
		t.Error("Message should explain the empty result")
	}
}

func TestOrchestrator_FetchAll(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return &Usage{Items: []models.QuotaItem{{Label: "Credits"}}}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	creds := []models.Credential{
		{Name: "one", Provider: models.ProviderCopilot},
		{Name: "two", Provider: models.ProviderKiro},
		{Name: "three", Provider: models.ProviderCopilot},
	}

	orch.FetchAll(context.Background(), creds)

	if lookup.calls.Load() != 3 {
		t.Errorf("expected 3 lookups, got %d", lookup.calls.Load())
	}
	if len(orch.States()) != 3 {
		t.Errorf("expected 3 cached states, got %d", len(orch.States()))
	}
	if orch.Busy() {
		t.Error("Busy() should be false after FetchAll returns")
	}
}

func TestOrchestrator_FetchAll_PartialFailure(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			if cred.Name == "revoked" {
				return nil, &StatusError{Message: "usage request failed", Code: 404}
			}
			return &Usage{Items: []models.QuotaItem{{Label: "Credits", Percent: 60}}}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	creds := []models.Credential{
		{Name: "one", Provider: models.ProviderCopilot},
		{Name: "revoked", Provider: models.ProviderCopilot},
		{Name: "three", Provider: models.ProviderCopilot},
	}

	orch.FetchAll(context.Background(), creds)

	// The failing credential carries its own error state
	failed := orch.State("revoked")
	if failed == nil || failed.Status != models.QuotaError {
		t.Fatalf("failed credential state = %+v, want error", failed)
	}
	if failed.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", failed.StatusCode)
	}
	if !strings.Contains(failed.Message, "re-authentication") {
		t.Errorf("Message = %q, want the re-authentication hint", failed.Message)
	}

	// The others are unaffected
	for _, name := range []string{"one", "three"} {
		state := orch.State(name)
		if state == nil || state.Status != models.QuotaSuccess {
			t.Errorf("State(%q) = %+v, want success", name, state)
		}
	}
}

func TestOrchestrator_FetchAll_Reentrant(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			close(started)
			<-release
			return &Usage{}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	creds := []models.Credential{{Name: "one", Provider: models.ProviderKiro}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orch.FetchAll(context.Background(), creds)
	}()

	<-started
	if !orch.Busy() {
		t.Error("Busy() should be true while a pass is in flight")
	}

	// Second pass returns immediately without fetching
	orch.FetchAll(context.Background(), creds)
	if lookup.calls.Load() != 1 {
		t.Errorf("reentrant FetchAll should not fetch, got %d calls", lookup.calls.Load())
	}

	close(release)
	wg.Wait()
}

func TestOrchestrator_Clear_DiscardsStaleWrites(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			close(fetching)
			<-release
			return &Usage{PlanName: "stale"}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	cred := models.Credential{Name: "work", Provider: models.ProviderCopilot}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orch.FetchOne(context.Background(), cred)
	}()

	<-fetching
	orch.Clear()
	close(release)
	wg.Wait()

	if got := orch.State("work"); got != nil {
		t.Errorf("fetch started before Clear should not repopulate, got %v", got)
	}
}

func TestOrchestrator_ClearProvider_ScopedToProvider(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return &Usage{PlanName: "pro"}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	orch.FetchOne(context.Background(), models.Credential{Name: "cop-work", Provider: models.ProviderCopilot})
	orch.FetchOne(context.Background(), models.Credential{Name: "kiro-work", Provider: models.ProviderKiro})

	cleared := orch.ClearProvider(models.ProviderCopilot)
	if len(cleared) != 1 || cleared[0] != "cop-work" {
		t.Errorf("cleared = %v, want [cop-work]", cleared)
	}

	if got := orch.State("cop-work"); got != nil {
		t.Errorf("State(cop-work) = %v, want nil after clear", got)
	}
	if got := orch.State("kiro-work"); got == nil {
		t.Error("kiro state should survive the copilot clear")
	}
}

func TestOrchestrator_ClearProvider_KeepsOtherProviderInFlight(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			close(fetching)
			<-release
			return &Usage{PlanName: "pro"}, nil
		},
	}

	orch := NewOrchestrator(lookup)
	cred := models.Credential{Name: "kiro-work", Provider: models.ProviderKiro}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orch.FetchOne(context.Background(), cred)
	}()

	<-fetching
	orch.ClearProvider(models.ProviderCopilot)
	close(release)
	wg.Wait()

	state := orch.State("kiro-work")
	if state == nil || state.Status != models.QuotaSuccess {
		t.Fatalf("kiro fetch should land despite the copilot clear, got %+v", state)
	}
}

func TestOrchestrator_FetchOne_MissingIdentifier(t *testing.T) {
	lookup := &MockLookup{
		FetchFunc: func(ctx context.Context, cred models.Credential) (*Usage, error) {
			return nil, ErrMissingIdentifier
		},
	}

	orch := NewOrchestrator(lookup)
	state := orch.FetchOne(context.Background(), models.Credential{Name: "bad"})

	if state.Status != models.QuotaError {
		t.Errorf("Status = %s, want error", state.Status)
	}
	if !errors.Is(ErrMissingIdentifier, ErrMissingIdentifier) {
		t.Fatal("sentinel comparison sanity check")
	}
}
