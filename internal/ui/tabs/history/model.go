// Package history provides the history tab for charting recorded
// quota snapshots.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotadeck/quotadeck/internal/app"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/services"
)

// timeRange selects how far back the snapshot series reaches.
type timeRange int

const (
	rangeDay timeRange = iota
	rangeWeek
	rangeMonth
)

// Next cycles to the following range.
func (r timeRange) Next() timeRange {
	switch r {
	case rangeDay:
		return rangeWeek
	case rangeWeek:
		return rangeMonth
	default:
		return rangeDay
	}
}

// Duration returns the lookback window for the range.
func (r timeRange) Duration() time.Duration {
	switch r {
	case rangeDay:
		return 24 * time.Hour
	case rangeWeek:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// String returns the display label for the range.
func (r timeRange) String() string {
	switch r {
	case rangeDay:
		return "24 hours"
	case rangeWeek:
		return "7 days"
	default:
		return "30 days"
	}
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	NextCred    key.Binding
	PrevCred    key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextCred: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next credential"),
		),
		PrevCred: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev credential"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when a snapshot series is loaded.
type historyLoadedMsg struct {
	credentials []string
	series      []models.QuotaSnapshot
	credential  string
}

// historyErrorMsg is sent when loading the series fails.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange   timeRange
	credentials []string
	selected    int
	series      []models.QuotaSnapshot
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: rangeMonth,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// loadHistoryCmd loads the tracked credential list and the selected
// credential's snapshot series.
func (m *Model) loadHistoryCmd() tea.Cmd {
	selected := m.selected
	lookback := m.timeRange.Duration()

	return func() tea.Msg {
		if m.services == nil || m.services.Database() == nil {
			return historyErrorMsg{err: "history store not initialized"}
		}

		database := m.services.Database()
		tracked, err := database.GetTrackedCredentials()
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		if len(tracked) == 0 {
			return historyLoadedMsg{}
		}

		if selected >= len(tracked) {
			selected = 0
		}
		credential := tracked[selected]

		series, err := database.GetSnapshotSeries(credential, lookback)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		return historyLoadedMsg{
			credentials: tracked,
			series:      series,
			credential:  credential,
		}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.credentials = msg.credentials
		m.series = msg.series
		if m.selected >= len(m.credentials) {
			m.selected = 0
		}
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case app.SectionFetchDoneMsg:
		// Fresh snapshots may have landed
		if !m.loading {
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.NextCred):
		if len(m.credentials) > 1 {
			m.selected = (m.selected + 1) % len(m.credentials)
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case key.Matches(msg, m.keys.PrevCred):
		if len(m.credentials) > 1 {
			m.selected = (m.selected - 1 + len(m.credentials)) % len(m.credentials)
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.NextCred,
		m.keys.PrevCred,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.NextCred, m.keys.PrevCred},
		{m.keys.Up, m.keys.Down},
	}
}
