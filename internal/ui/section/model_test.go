package section

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotadeck/quotadeck/internal/app"
	"github.com/quotadeck/quotadeck/internal/models"
)

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testCredentials(n int, provider models.Provider) []models.Credential {
	creds := make([]models.Credential, 0, n)
	for i := 0; i < n; i++ {
		creds = append(creds, models.Credential{
			Name:     provider.String() + "-" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Provider: provider,
		})
	}
	return creds
}

func TestModel_FiltersByProvider(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderCopilot)

	creds := append(testCredentials(3, models.ProviderCopilot), testCredentials(2, models.ProviderKiro)...)
	tab, _ := m.Update(app.CredentialsLoadedMsg{Credentials: creds})
	m = tab.(*Model)

	if got := m.window.Len(); got != 3 {
		t.Fatalf("window.Len() = %d, want 3", got)
	}
	for _, c := range m.window.Items() {
		if c.Provider != models.ProviderCopilot {
			t.Errorf("window contains %s credential %s", c.Provider, c.Name)
		}
	}
}

func TestModel_RefreshCycle(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderCopilot)
	tab, _ := m.Update(app.CredentialsLoadedMsg{Credentials: testCredentials(2, models.ProviderCopilot)})
	m = tab.(*Model)

	// r triggers the credential reload
	tab, cmd := m.Update(keyPress('r'))
	m = tab.(*Model)
	if cmd == nil {
		t.Fatal("refresh key produced no command")
	}
	if m.coordinator.Phase() != PhaseRequested {
		t.Fatalf("phase = %v, want requested", m.coordinator.Phase())
	}

	// reload starts
	tab, cmd = m.Update(app.ReloadStateMsg{Loading: true})
	m = tab.(*Model)
	if cmd != nil {
		t.Fatal("fetch fired on rising loading edge")
	}

	// reload finishes, fetch fires once
	tab, cmd = m.Update(app.ReloadStateMsg{Loading: false})
	m = tab.(*Model)
	if cmd == nil {
		t.Fatal("fetch did not fire on falling loading edge")
	}
	if m.coordinator.Phase() != PhaseFetching {
		t.Fatalf("phase = %v, want fetching", m.coordinator.Phase())
	}

	// completion for another provider is ignored
	tab, _ = m.Update(app.SectionFetchDoneMsg{Provider: models.ProviderKiro})
	m = tab.(*Model)
	if m.coordinator.Phase() != PhaseFetching {
		t.Fatal("foreign fetch completion closed the cycle")
	}

	tab, _ = m.Update(app.SectionFetchDoneMsg{Provider: models.ProviderCopilot})
	m = tab.(*Model)
	if m.coordinator.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", m.coordinator.Phase())
	}
}

func TestModel_RefreshAbsorbedWhileActive(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderKiro)
	tab, _ := m.Update(keyPress('r'))
	m = tab.(*Model)

	tab, cmd := m.Update(keyPress('r'))
	m = tab.(*Model)
	if cmd != nil {
		t.Fatal("second refresh request was not absorbed")
	}
	if m.coordinator.Phase() != PhaseRequested {
		t.Fatalf("phase = %v, want requested", m.coordinator.Phase())
	}
}

func TestModel_PageNavigationKeys(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderCopilot)
	m.SetSize(40, 30) // one column, page size 3
	tab, _ := m.Update(app.CredentialsLoadedMsg{Credentials: testCredentials(7, models.ProviderCopilot)})
	m = tab.(*Model)

	if got := m.window.TotalPages(); got != 3 {
		t.Fatalf("TotalPages() = %d, want 3", got)
	}

	tab, _ = m.Update(keyPress(']'))
	m = tab.(*Model)
	if got := m.window.CurrentPage(); got != 2 {
		t.Fatalf("CurrentPage() = %d after next, want 2", got)
	}

	tab, _ = m.Update(keyPress('['))
	m = tab.(*Model)
	if got := m.window.CurrentPage(); got != 1 {
		t.Fatalf("CurrentPage() = %d after prev, want 1", got)
	}
}

func TestModel_ToggleAllViewOverThreshold(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderCopilot)
	tab, _ := m.Update(app.CredentialsLoadedMsg{Credentials: testCredentials(31, models.ProviderCopilot)})
	m = tab.(*Model)

	tab, cmd := m.Update(keyPress('a'))
	m = tab.(*Model)
	if cmd == nil {
		t.Fatal("refused toggle produced no warning")
	}
	if m.window.Mode() != models.ViewPaged {
		t.Fatal("mode switched despite exceeding the threshold")
	}

	msg := cmd()
	notif, ok := msg.(app.AddNotificationMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want AddNotificationMsg", msg)
	}
	if !strings.Contains(notif.Message, "too many credentials") {
		t.Errorf("warning message = %q", notif.Message)
	}
}

func TestModel_ViewShowsPager(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderCopilot)
	m.SetSize(40, 30)
	tab, _ := m.Update(app.CredentialsLoadedMsg{Credentials: testCredentials(7, models.ProviderCopilot)})
	m = tab.(*Model)

	view := m.View()
	if !strings.Contains(view, "page 1/3") {
		t.Errorf("view missing pager line:\n%s", view)
	}
	if !strings.Contains(view, "7 credentials") {
		t.Errorf("view missing credential count:\n%s", view)
	}
}

func TestModel_EmptyView(t *testing.T) {
	m := New(app.NewState(), nil, models.ProviderKiro)
	m.SetSize(80, 30)

	view := m.View()
	if !strings.Contains(view, "No Kiro credentials") {
		t.Errorf("empty view = %q", view)
	}
}
