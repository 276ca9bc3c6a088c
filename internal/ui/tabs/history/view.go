package history

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotadeck/quotadeck/internal/ui/components"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
)

var docStyle = lipgloss.NewStyle().Padding(1, 2)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderMessage(styles.HelpStyle.Render("Loading history data..."))
	}
	if m.errorMsg != "" {
		return m.renderMessage(fmt.Sprintf("%s %s",
			styles.ErrorTextStyle.Render("Error:"), m.errorMsg))
	}
	if len(m.credentials) == 0 {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderRemainingChart(),
		m.renderSparkline(),
	)
	m.viewport.SetContent(content)

	return docStyle.Width(m.width).Height(m.height).Render(m.viewport.View())
}

func (m *Model) renderMessage(content string) string {
	return docStyle.Width(m.width).Height(m.height).Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No snapshots recorded yet."),
		styles.HelpStyle.Render("Data will appear as quota refreshes complete."),
	)
	return m.renderMessage(content)
}

func (m *Model) renderHeader() string {
	credential := m.credentials[m.selected]
	if len(credential) > 40 {
		credential = credential[:37] + "..."
	}

	title := styles.TitleStyle.Render("History: " + credential)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	position := styles.HelpStyle.Render(fmt.Sprintf(
		"credential %d of %d, %d snapshots", m.selected+1, len(m.credentials), len(m.series)))

	return lipgloss.JoinVertical(lipgloss.Left, header, position, "")
}

func (m *Model) renderRemainingChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Percent Remaining"), "")

	if len(m.series) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No snapshots in this range"))
	} else {
		data := make([]float64, len(m.series))
		for i, snap := range m.series {
			data[i] = snap.PercentRemaining
		}

		chartWidth := max(cardWidth-12, 30)
		chart := components.RenderLineChart(data, chartWidth, 8,
			fmt.Sprintf("last %s, oldest to newest", m.timeRange.String()))
		rows = append(rows, chart)

		latest := m.series[len(m.series)-1]
		summary := fmt.Sprintf("latest %.1f%% at %s",
			latest.PercentRemaining, latest.Timestamp.Format("Jan 2 15:04"))
		rows = append(rows, "", styles.HelpStyle.Render("  "+summary))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSparkline() string {
	if len(m.series) < 2 {
		return ""
	}

	cardWidth := max(m.width-6, 40)
	data := make([]float64, len(m.series))
	for i, snap := range m.series {
		data[i] = snap.PercentRemaining
	}

	rows := []string{
		styles.CardTitleStyle.Render("Trend"),
		components.RenderSparkline(data, max(cardWidth-8, 20)),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...))
}
