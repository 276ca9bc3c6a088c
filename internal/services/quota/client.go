package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

// UsageLookup is the quota lookup service consumed by the orchestrator.
type UsageLookup interface {
	FetchUsage(ctx context.Context, cred models.Credential) (*Usage, error)
}

// Usage is the normalized result of one lookup call.
type Usage struct {
	ResetsAt time.Time
	PlanName string
	Items    []models.QuotaItem
}

// Client talks to the backend quota service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a quota service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// copilotUsageResponse is the Copilot-style payload, keyed by named
// sub-quotas.
type copilotUsageResponse struct {
	QuotaSnapshots map[string]copilotQuotaSnapshot `json:"quota_snapshots"`
	QuotaResetDate string                          `json:"quota_reset_date"`
	CopilotPlan    string                          `json:"copilot_plan"`
}

type copilotQuotaSnapshot struct {
	PercentRemaining float64 `json:"percent_remaining"`
	Entitlement      float64 `json:"entitlement"`
	QuotaRemaining   float64 `json:"quota_remaining"`
	Unlimited        bool    `json:"unlimited"`
}

// kiroUsageResponse is the Kiro-style payload, a flat usage object.
type kiroUsageResponse struct {
	Usage struct {
		CreditUsage        float64 `json:"credit_usage"`
		MonthlyCreditLimit float64 `json:"monthly_credit_limit"`
		ContextPercentage  float64 `json:"context_percentage"`
	} `json:"usage"`
	PlanName      string `json:"plan_name"`
	NextResetDate string `json:"next_reset_date"`
}

// FetchUsage retrieves and normalizes the usage payload for one
// credential. The identifier check happens before any network call.
func (c *Client) FetchUsage(ctx context.Context, cred models.Credential) (*Usage, error) {
	if cred.ID() == "" {
		return nil, ErrMissingIdentifier
	}

	endpoint := fmt.Sprintf("%s/api/quota/%s/%s",
		c.baseURL, url.PathEscape(cred.Provider.String()), url.PathEscape(cred.ID()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cred.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cred.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &StatusError{Message: fmt.Sprintf("usage request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StatusError{Message: fmt.Sprintf("failed to read usage response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Message: fmt.Sprintf("usage request for %s failed", cred.Name),
			Code:    resp.StatusCode,
		}
	}

	switch cred.Provider {
	case models.ProviderCopilot:
		return parseCopilotUsage(body)
	case models.ProviderKiro:
		return parseKiroUsage(body)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cred.Provider)
	}
}

// parseCopilotUsage normalizes the sub-quota map. Snapshot keys are
// sorted so the card ordering is stable across fetches.
func parseCopilotUsage(body []byte) (*Usage, error) {
	var payload copilotUsageResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse usage response: %w", err)
	}

	usage := &Usage{PlanName: payload.CopilotPlan}
	if payload.QuotaResetDate != "" {
		if t, err := time.Parse("2006-01-02", payload.QuotaResetDate); err == nil {
			usage.ResetsAt = t
		} else if t, err := time.Parse(time.RFC3339, payload.QuotaResetDate); err == nil {
			usage.ResetsAt = t
		}
	}

	names := make([]string, 0, len(payload.QuotaSnapshots))
	for name := range payload.QuotaSnapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		snap := payload.QuotaSnapshots[name]
		item := models.QuotaItem{
			Label:     quotaLabel(name),
			Percent:   snap.PercentRemaining,
			Limit:     snap.Entitlement,
			Unlimited: snap.Unlimited,
		}
		if snap.Entitlement > 0 {
			item.Used = snap.Entitlement - snap.QuotaRemaining
			if item.Used < 0 {
				item.Used = 0
			}
		}
		usage.Items = append(usage.Items, item)
	}

	return usage, nil
}

// parseKiroUsage normalizes the flat credit-usage object into
// percent-used items.
func parseKiroUsage(body []byte) (*Usage, error) {
	var payload kiroUsageResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse usage response: %w", err)
	}

	usage := &Usage{PlanName: payload.PlanName}
	if payload.NextResetDate != "" {
		if t, err := time.Parse("2006-01-02", payload.NextResetDate); err == nil {
			usage.ResetsAt = t
		} else if t, err := time.Parse(time.RFC3339, payload.NextResetDate); err == nil {
			usage.ResetsAt = t
		}
	}

	u := payload.Usage
	if u.MonthlyCreditLimit > 0 {
		usage.Items = append(usage.Items, models.QuotaItem{
			Label:         "Credits",
			Percent:       u.CreditUsage / u.MonthlyCreditLimit * 100,
			Used:          u.CreditUsage,
			Limit:         u.MonthlyCreditLimit,
			PercentIsUsed: true,
		})
	} else if u.CreditUsage > 0 {
		usage.Items = append(usage.Items, models.QuotaItem{
			Label:     "Credits",
			Used:      u.CreditUsage,
			Unlimited: true,
		})
	}
	if u.ContextPercentage > 0 {
		usage.Items = append(usage.Items, models.QuotaItem{
			Label:         "Context window",
			Percent:       u.ContextPercentage,
			PercentIsUsed: true,
		})
	}

	return usage, nil
}

// quotaLabel converts a snake_case sub-quota key into a card label.
func quotaLabel(key string) string {
	switch key {
	case "premium_interactions":
		return "Premium requests"
	case "chat":
		return "Chat"
	case "completions":
		return "Completions"
	default:
		return key
	}
}
