package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
)

// cardChrome is how many cells the card border and padding consume.
const cardChrome = 4

// QuotaCard renders one credential's quota state as a bordered card.
func QuotaCard(cred models.Credential, state *models.QuotaState, width int, spinnerView string) string {
	innerWidth := width - cardChrome
	if innerWidth < 20 {
		innerWidth = 20
	}

	var lines []string
	lines = append(lines, cardHeader(cred, state, innerWidth))

	switch {
	case state == nil || state.Status == models.QuotaIdle:
		lines = append(lines, styles.EmptyStateStyle.Render("press r to refresh"))

	case state.Status == models.QuotaLoading:
		lines = append(lines, spinnerView+" "+styles.EmptyStateStyle.Render("fetching usage"))

	case state.Status == models.QuotaError:
		lines = append(lines, styles.ErrorTextStyle.Render(wrap(state.Message, innerWidth)))

	default:
		lines = append(lines, cardBody(state, innerWidth)...)
	}

	style := styles.CardStyle
	if state != nil && state.Status == models.QuotaError {
		style = styles.CardErrorStyle
	}

	return style.Width(innerWidth + 2).Render(strings.Join(lines, "\n"))
}

func cardHeader(cred models.Credential, state *models.QuotaState, width int) string {
	name := cred.Label
	if name == "" {
		name = cred.Name
	}

	title := styles.CardTitleStyle.Render(name)
	provider := lipgloss.NewStyle().
		Foreground(styles.GetProviderColor(cred.Provider.String())).
		Render(cred.Provider.DisplayName())

	header := title + " " + provider
	if state != nil && state.PlanName != "" {
		header += " " + styles.PlanBadgeStyle.Render(state.PlanName)
	}
	return header
}

func cardBody(state *models.QuotaState, width int) []string {
	var lines []string

	if len(state.Items) == 0 {
		msg := state.Message
		if msg == "" {
			msg = "no usage data"
		}
		lines = append(lines, styles.EmptyStateStyle.Render(msg))
		return lines
	}

	for _, item := range state.Items {
		if item.Unlimited {
			lines = append(lines, UnlimitedBarLine(item.Label, width))
			continue
		}
		lines = append(lines, QuotaBarLine(item.Label, item.PercentRemaining(), width))
		if item.Limit > 0 {
			detail := fmt.Sprintf("%.0f of %.0f used", item.Used, item.Limit)
			lines = append(lines, styles.HelpStyle.Render("  "+detail))
		}
	}

	if !state.ResetsAt.IsZero() {
		lines = append(lines, styles.HelpStyle.Render("resets "+state.ResetsAt.Format("Jan 2")))
	}

	return lines
}

// wrap breaks a message into lines no wider than width.
func wrap(s string, width int) string {
	if width < 1 || len(s) <= width {
		return s
	}

	words := strings.Fields(s)
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if lineLen > 0 && lineLen+1+len(w) > width {
			b.WriteString("\n")
			lineLen = 0
		} else if i > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
