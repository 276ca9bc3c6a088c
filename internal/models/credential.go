// Package models defines data structures and domain types.
package models

import "time"

// Provider identifies which subscription API a credential belongs to.
type Provider string

const (
	// ProviderCopilot is the Copilot-style subscription API.
	ProviderCopilot Provider = "copilot"
	// ProviderKiro is the Kiro-style subscription API.
	ProviderKiro Provider = "kiro"
)

// String returns the provider tag.
func (p Provider) String() string { return string(p) }

// DisplayName returns the human-readable provider name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderCopilot:
		return "Copilot"
	case ProviderKiro:
		return "Kiro"
	default:
		return string(p)
	}
}

// Credential represents a stored authorization entry for a provider.
// The Name is the stable identifier used to key quota state and to
// address the quota lookup service.
type Credential struct {
	AddedAt  time.Time `json:"addedAt"`
	LastUsed time.Time `json:"lastUsed,omitempty"`
	Name     string    `json:"name"`
	Provider Provider  `json:"provider"`
	APIKey   string    `json:"apiKey,omitempty"`
	Label    string    `json:"label,omitempty"`
}

// ID returns the stable identifier for the credential.
func (c *Credential) ID() string {
	return c.Name
}
