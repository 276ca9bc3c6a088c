// Package credentials manages the credential list with file watching
// and persistence.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
)

// CredentialsFile is the JSON file structure for credential storage.
type CredentialsFile struct {
	Credentials []models.Credential `json:"credentials"`
	Version     int                 `json:"version,omitempty"`
}

// EventType defines the type of credential event.
type EventType int

const (
	EventCredentialsLoaded EventType = iota
	EventCredentialsChanged
	EventCredentialAdded
	EventCredentialUpdated
	EventCredentialDeleted
	EventReloadStarted
	EventReloadFinished
	EventError
)

// Event represents a credential service event.
type Event struct {
	Type       EventType
	Error      error
	Credential *models.Credential
}

// Service manages credentials with file watching and change
// notifications. Reload runs asynchronously; Loading reports whether a
// reload pass is in flight so the UI can sequence its quota refresh
// behind it.
type Service struct {
	mu            sync.RWMutex
	credentials   []models.Credential
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	loading       bool
}

// New creates a new credentials service and starts file watching.
func New(filePath string) (*Service, error) {
	s := &Service{
		credentials: make([]models.Credential, 0),
		filePath:    filePath,
		eventChan:   make(chan Event, 100),
		stopChan:    make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.loadFile(); err != nil {
		// If file doesn't exist, create an empty store
		if os.IsNotExist(err) {
			if err := s.save(); err != nil {
				return nil, fmt.Errorf("failed to create credentials file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventCredentialsLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to credential
// changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// All returns a copy of all credentials.
func (s *Service) All() []models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Credential, len(s.credentials))
	copy(out, s.credentials)
	return out
}

// ByProvider returns the credentials belonging to one provider.
func (s *Service) ByProvider(provider models.Provider) []models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.credentials, func(c models.Credential, _ int) bool {
		return c.Provider == provider
	})
}

// Get returns a credential by name, or nil.
func (s *Service) Get(name string) *models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.credentials {
		if s.credentials[i].Name == name {
			c := s.credentials[i]
			return &c
		}
	}
	return nil
}

// Count returns the number of credentials.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credentials)
}

// Loading reports whether a reload pass is in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Reload re-reads the credential file asynchronously. Subscribers see
// EventReloadStarted, then EventReloadFinished once the file has been
// read. A reload during a reload is absorbed.
func (s *Service) Reload() {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventReloadStarted})

	go func() {
		err := s.loadFileWithLock()

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		if err != nil {
			s.sendEvent(Event{Type: EventError, Error: err})
		}
		s.sendEvent(Event{Type: EventReloadFinished})
	}()
}

// Add appends a new credential.
func (s *Service) Add(cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.credentials {
		if c.Name == cred.Name {
			return fmt.Errorf("credential %s already exists", cred.Name)
		}
	}

	if cred.AddedAt.IsZero() {
		cred.AddedAt = time.Now()
	}

	s.credentials = append(s.credentials, cred)

	if err := s.saveLocked(); err != nil {
		// Rollback
		s.credentials = s.credentials[:len(s.credentials)-1]
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.sendEvent(Event{Type: EventCredentialAdded, Credential: &cred})
	return nil
}

// Update replaces an existing credential by name.
func (s *Service) Update(cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, c := range s.credentials {
		if c.Name == cred.Name {
			if cred.AddedAt.IsZero() {
				cred.AddedAt = c.AddedAt
			}
			s.credentials[i] = cred
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("credential not found: %s", cred.Name)
	}

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.sendEvent(Event{Type: EventCredentialUpdated, Credential: &cred})
	return nil
}

// Delete removes a credential by name.
func (s *Service) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	var deleted models.Credential
	for i, c := range s.credentials {
		if c.Name == name {
			idx = i
			deleted = c
			break
		}
	}

	if idx == -1 {
		return fmt.Errorf("credential not found: %s", name)
	}

	s.credentials = append(s.credentials[:idx], s.credentials[idx+1:]...)

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.sendEvent(Event{Type: EventCredentialDeleted, Credential: &deleted})
	return nil
}

// loadFile loads credentials from the JSON file.
func (s *Service) loadFile() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	creds, err := parseCredentials(data)
	if err != nil {
		return err
	}

	s.credentials = creds
	return nil
}

// loadFileWithLock loads credentials while holding the lock.
func (s *Service) loadFileWithLock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFile()
}

// parseCredentials parses the file, accepting the wrapped format and a
// legacy bare array.
func parseCredentials(data []byte) ([]models.Credential, error) {
	var file CredentialsFile
	if err := json.Unmarshal(data, &file); err == nil && file.Credentials != nil {
		return file.Credentials, nil
	}

	var creds []models.Credential
	if err := json.Unmarshal(data, &creds); err == nil {
		return creds, nil
	}

	return nil, fmt.Errorf("failed to parse credentials file: invalid format")
}

// save saves credentials to the JSON file (public version).
func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked saves credentials to the JSON file (must hold lock).
func (s *Service) saveLocked() error {
	file := CredentialsFile{
		Credentials: s.credentials,
		Version:     1,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads credentials after an external change.
func (s *Service) handleFileChange() {
	if err := s.loadFileWithLock(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventCredentialsChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
