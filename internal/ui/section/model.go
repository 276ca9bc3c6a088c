package section

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/quotadeck/quotadeck/internal/app"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/services"
	"github.com/quotadeck/quotadeck/internal/ui/components"
	"github.com/quotadeck/quotadeck/internal/ui/layout"
	"github.com/quotadeck/quotadeck/internal/ui/styles"
)

// keyMap defines the keybindings for a section.
type keyMap struct {
	PrevPage key.Binding
	NextPage key.Binding
	ShowAll  key.Binding
	Refresh  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		ShowAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all view")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

// Model is one provider's quota section. It filters the shared
// credential list down to its provider, lays the cards out in a paged
// grid, and drives the reload-then-fetch refresh cycle.
type Model struct {
	provider models.Provider
	state    *app.State
	services *services.Manager

	estimator   layout.ColumnEstimator
	window      *layout.PageWindow[models.Credential]
	coordinator RefreshCoordinator

	spinner components.LoadingSpinner
	keymap  keyMap

	width  int
	height int
}

// New creates a section for the given provider.
func New(state *app.State, mgr *services.Manager, provider models.Provider) *Model {
	return &Model{
		provider: provider,
		state:    state,
		services: mgr,
		window:   layout.NewPageWindow[models.Credential](),
		spinner:  components.NewSpinner("loading"),
		keymap:   defaultKeyMap(),
	}
}

// Init initializes the section.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the section.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.CredentialsLoadedMsg:
		m.setCredentials(msg.Credentials)

	case app.ReloadStateMsg:
		if m.coordinator.ObserveLoading(msg.Loading) {
			// Re-read the store so the fetch covers credentials the
			// reload just added, even if the list broadcast has not
			// reached this section yet.
			creds := m.window.Items()
			if m.services != nil {
				creds = m.services.Credentials().ByProvider(m.provider)
				m.window.SetItems(creds)
			}
			return m, app.FetchSectionQuotaCmd(m.services, m.provider, creds)
		}

	case app.SectionFetchDoneMsg:
		if msg.Provider == m.provider {
			m.coordinator.FetchDone()
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.PrevPage):
		m.window.PrevPage()

	case key.Matches(msg, m.keymap.NextPage):
		m.window.NextPage()

	case key.Matches(msg, m.keymap.ShowAll):
		if !m.window.ToggleMode() {
			return app.NotifyWarningCmd("too many credentials to show all")
		}

	case key.Matches(msg, m.keymap.Refresh):
		if m.coordinator.Request() {
			return app.ReloadCredentialsCmd(m.services)
		}
	}

	return nil
}

// setCredentials replaces the section's credential list with the
// entries matching its provider. When the list empties outside a
// reload, stale quota entries are dropped so a later re-add starts
// clean.
func (m *Model) setCredentials(creds []models.Credential) {
	filtered := lo.Filter(creds, func(c models.Credential, _ int) bool {
		return c.Provider == m.provider
	})
	m.window.SetItems(filtered)

	if len(filtered) == 0 && !m.state.Loading() && m.services != nil {
		m.services.ClearQuotaStates(m.provider)
	}
}

// SetSize sets the available size for the section.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.estimator.SetWidth(width - 4)
	m.window.SetColumns(m.estimator.Columns())
}

// View renders the section.
func (m *Model) View() string {
	if m.window.Len() == 0 {
		return m.renderEmpty()
	}

	columns := m.estimator.Columns()
	cardWidth := layout.MinCardWidth
	if columns > 0 && m.width > 0 {
		cardWidth = max(layout.MinCardWidth, (m.width-4)/columns)
	}

	visible := m.window.Visible()
	var rows []string
	for start := 0; start < len(visible); start += columns {
		end := min(start+columns, len(visible))

		var cards []string
		for _, cred := range visible[start:end] {
			cards = append(cards, m.renderCard(cred, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, grid, "", m.renderStatusLine()),
	)
}

func (m *Model) renderCard(cred models.Credential, width int) string {
	var quotaState *models.QuotaState
	if m.services != nil {
		quotaState = m.services.Quota().State(cred.ID())
	}
	return components.QuotaCard(cred, quotaState, width, m.spinner.View())
}

func (m *Model) renderEmpty() string {
	msg := fmt.Sprintf("No %s credentials configured.", m.provider.DisplayName())
	if m.state.Loading() {
		msg = m.spinner.View() + " reloading credentials"
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(styles.EmptyStateStyle.Render(msg))
}

func (m *Model) renderStatusLine() string {
	var parts []string

	if m.window.Mode() == models.ViewAll {
		parts = append(parts, fmt.Sprintf("all %d credentials", m.window.Len()))
	} else {
		parts = append(parts, fmt.Sprintf("page %d/%d", m.window.CurrentPage(), m.window.TotalPages()))
		parts = append(parts, fmt.Sprintf("%d credentials", m.window.Len()))
	}

	switch m.coordinator.Phase() {
	case PhaseRequested, PhaseWaitingForReload:
		parts = append(parts, m.spinner.View()+" reloading")
	case PhaseFetching:
		parts = append(parts, m.spinner.View()+" fetching")
	}

	return styles.PagerStyle.Render(strings.Join(parts, "  "))
}

// ShortHelp returns key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keymap.PrevPage,
		m.keymap.NextPage,
		m.keymap.ShowAll,
		m.keymap.Refresh,
	}
}

// FullHelp returns key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keymap.PrevPage, m.keymap.NextPage},
		{m.keymap.ShowAll, m.keymap.Refresh},
	}
}
