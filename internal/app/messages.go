package app

import (
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// CredentialsLoadedMsg contains the loaded credential list.
type CredentialsLoadedMsg struct {
	Credentials []models.Credential
}

// ReloadStateMsg reports the credential reload flag. Sections observe
// the transitions to sequence their quota refresh.
type ReloadStateMsg struct {
	Loading bool
}

// QuotaUpdatedMsg carries a refreshed quota state for one credential.
type QuotaUpdatedMsg struct {
	Credential string
	State      *models.QuotaState
}

// SectionFetchDoneMsg signals that a section's quota fan-out finished.
type SectionFetchDoneMsg struct {
	Provider models.Provider
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
