// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/db"
	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/services/credentials"
	"github.com/quotadeck/quotadeck/internal/services/quota"
)

const criticalQuotaPercent = 5.0

type (
	// CredentialsChangedEvent is emitted when the credential list
	// changes.
	CredentialsChangedEvent struct {
		Credentials []models.Credential
	}

	// ReloadStateEvent is emitted when a credential reload starts or
	// finishes. Loading is true while the reload runs.
	ReloadStateEvent struct {
		Loading bool
	}

	// QuotaUpdatedEvent is emitted when quota state is refreshed for a
	// credential.
	QuotaUpdatedEvent struct {
		Credential string
		State      *models.QuotaState
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CredentialsChangedEvent) isServiceEvent() {}
func (ReloadStateEvent) isServiceEvent()        {}
func (QuotaUpdatedEvent) isServiceEvent()       {}
func (ErrorEvent) isServiceEvent()              {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu               sync.RWMutex
	credentials      *credentials.Service
	quota            *quota.Orchestrator
	database         *db.DB
	refreshInterval  time.Duration
	eventChan        chan ServiceEvent
	stopChan         chan struct{}
	subscribers      []chan<- ServiceEvent
	previousPercents map[string]float64
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:        make(chan ServiceEvent, 100),
		stopChan:         make(chan struct{}),
		refreshInterval:  cfg.RefreshInterval,
		previousPercents: make(map[string]float64),
	}

	var err error
	m.credentials, err = credentials.New(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := quota.NewClient(cfg.QuotaBaseURL, cfg.RequestTimeout)
	m.quota = quota.NewOrchestrator(client)

	go m.routeEvents()
	go m.pollLoop()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.credentials.Events():
			m.handleCredentialEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// pollLoop refreshes quota on the configured interval and prunes old
// history rows.
func (m *Manager) pollLoop() {
	if m.refreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RefreshAllQuotas(context.Background(), m.credentials.All())
			if _, err := m.database.PruneOlderThan(30 * 24 * time.Hour); err != nil {
				logger.Warn("failed to prune quota history", "error", err)
			}

		case <-m.stopChan:
			return
		}
	}
}

// handleCredentialEvent converts and broadcasts credential events.
func (m *Manager) handleCredentialEvent(event credentials.Event) {
	switch event.Type {
	case credentials.EventCredentialsLoaded, credentials.EventCredentialsChanged,
		credentials.EventCredentialAdded, credentials.EventCredentialUpdated,
		credentials.EventCredentialDeleted:

		m.broadcast(CredentialsChangedEvent{
			Credentials: m.credentials.All(),
		})

	case credentials.EventReloadStarted:
		m.broadcast(ReloadStateEvent{Loading: true})

	case credentials.EventReloadFinished:
		// The fresh list must reach subscribers before the falling
		// loading edge, or a deferred quota fetch runs on stale
		// credentials.
		m.broadcast(CredentialsChangedEvent{
			Credentials: m.credentials.All(),
		})
		m.broadcast(ReloadStateEvent{Loading: false})

	case credentials.EventError:
		m.broadcast(ErrorEvent{
			Service: "credentials",
			Error:   event.Error,
		})
	}
}

// RefreshAllQuotas fetches quota for the given credentials, records
// history, and broadcasts the resulting states. One failing credential
// does not affect the others.
func (m *Manager) RefreshAllQuotas(ctx context.Context, creds []models.Credential) {
	m.quota.FetchAll(ctx, creds)

	for _, cred := range creds {
		state := m.quota.State(cred.ID())
		if state == nil {
			continue
		}

		if state.Status == models.QuotaSuccess {
			m.recordSnapshot(cred, state)
			m.checkNotifications(cred, state)
		}

		m.broadcast(QuotaUpdatedEvent{
			Credential: cred.ID(),
			State:      state,
		})
	}
}

// RefreshQuotaFor fetches quota for one credential and broadcasts the
// result.
func (m *Manager) RefreshQuotaFor(ctx context.Context, cred models.Credential) *models.QuotaState {
	state := m.quota.FetchOne(ctx, cred)

	if state.Status == models.QuotaSuccess {
		m.recordSnapshot(cred, state)
		m.checkNotifications(cred, state)
	}

	m.broadcast(QuotaUpdatedEvent{
		Credential: cred.ID(),
		State:      state,
	})
	return state
}

// ClearQuotaStates discards cached quota state for one provider.
// Called when that provider's credential list empties so removed
// credentials leave no stale cards; the other provider's cache is
// untouched.
func (m *Manager) ClearQuotaStates(provider models.Provider) {
	cleared := m.quota.ClearProvider(provider)

	m.mu.Lock()
	for _, id := range cleared {
		delete(m.previousPercents, id)
	}
	m.mu.Unlock()
}

// recordSnapshot persists the worst remaining percentage for history
// charts.
func (m *Manager) recordSnapshot(cred models.Credential, state *models.QuotaState) {
	worst := state.WorstPercentRemaining()
	if worst < 0 {
		return
	}

	snap := &models.QuotaSnapshot{
		Credential:       cred.ID(),
		Provider:         cred.Provider,
		PlanName:         state.PlanName,
		PercentRemaining: worst,
		Timestamp:        state.FetchedAt,
	}
	if err := m.database.InsertSnapshot(snap); err != nil {
		logger.Warn("failed to record quota snapshot", "credential", cred.Name, "error", err)
	}
}

// checkNotifications fires a desktop notification when a credential
// crosses below the critical threshold.
func (m *Manager) checkNotifications(cred models.Credential, state *models.QuotaState) {
	worst := state.WorstPercentRemaining()
	if worst < 0 {
		return
	}

	m.mu.Lock()
	old, exists := m.previousPercents[cred.ID()]
	m.previousPercents[cred.ID()] = worst
	m.mu.Unlock()

	if !exists {
		return
	}

	// Only notify when crossing the threshold downwards
	if worst < criticalQuotaPercent && old >= criticalQuotaPercent {
		title := fmt.Sprintf("Critical Quota: %s", cred.Name)
		body := fmt.Sprintf("Remaining quota is below %.0f%% (%.1f%%)", criticalQuotaPercent, worst)
		_ = beeep.Notify(title, body, "")
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Credentials returns the credentials service.
func (m *Manager) Credentials() *credentials.Service {
	return m.credentials
}

// Quota returns the quota orchestrator.
func (m *Manager) Quota() *quota.Orchestrator {
	return m.quota
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.credentials.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
