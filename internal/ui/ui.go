package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuniverse/tvx/internal/formatter"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	LoadingView
	ReportView
)

// demoUserID is the account shown by the demo menu entry.
const demoUserID = "demo_user"

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	client  services.Client
	token   string
	width   int
	height  int
	menu    list.Model
	loading string
	report  string
	last    menuAction
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies. The token
// may be empty, in which case authenticated actions surface a sign-in hint
// instead of calling the backend.
func NewModel(ctx context.Context, client services.Client, token string) *Model {
	menu := list.New(menuItems(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Tuniverse"
	menu.SetShowHelp(false)

	return &Model{
		ctx:    ctx,
		view:   MenuView,
		client: client,
		token:  token,
		menu:   menu,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		default:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleFetched(msg)
	}

	return m.updateMenu(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case LoadingView:
		return m.renderLoading()
	case ReportView:
		return m.renderReport()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.menu.SelectedItem()
		if selected != nil {
			if item, ok := selected.(menuItem); ok {
				return m.dispatch(item.action)
			}
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MenuView
		m.report = ""
		m.err = nil
		return m, nil
	case "r":
		return m.dispatch(m.last)
	}
	return m, nil
}

// dispatch starts the fetch for a menu action, switching to the loading view.
// Authenticated actions short-circuit to the report view when no token is set.
func (m *Model) dispatch(action menuAction) (tea.Model, tea.Cmd) {
	m.last = action

	if action != actionDemo && m.token == "" {
		m.err = fmt.Errorf("%w: run 'tvx auth login' first", shared.ErrNotAuthenticated)
		m.view = ReportView
		return m, nil
	}

	m.view = LoadingView
	switch action {
	case actionProfile:
		m.loading = "Fetching profile..."
		return m, m.fetchProfile()
	case actionPlaylists:
		m.loading = "Fetching playlists..."
		return m, m.fetchPlaylists()
	case actionTopArtists:
		m.loading = "Building passport from top artists..."
		return m, m.fetchPassport(services.SourceTopArtists)
	case actionRecentPlays:
		m.loading = "Building passport from recent plays..."
		return m, m.fetchPassport(services.SourceRecentPlays)
	case actionDemo:
		m.loading = "Fetching demo passport..."
		return m, m.fetchDemo()
	}

	m.view = MenuView
	return m, nil
}

func (m *Model) handleFetched(msg Msg) (tea.Model, tea.Cmd) {
	m.view = ReportView

	switch msg.kind {
	case MsgProfileFetched:
		data := msg.data.(struct {
			profile *services.Profile
			err     error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.report = formatter.RenderProfile(data.profile)

	case MsgPlaylistsFetched:
		data := msg.data.(struct {
			page *services.PlaylistPage
			err  error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.report = formatter.RenderPlaylists(data.page)

	case MsgPassportFetched:
		data := msg.data.(struct {
			passport *services.Passport
			err      error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		if data.passport.TotalArtists == 0 {
			m.report = formatter.NoDataMessage + "\n"
		} else {
			m.report = formatter.RenderPassport(data.passport)
		}
	}

	return m, nil
}

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == MenuView {
		m.menu, cmd = m.menu.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.client.Profile(m.ctx, m.token)
		return profileFetchedMsg(profile, err)
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		page, err := m.client.Playlists(m.ctx, m.token, services.DefaultPlaylistLimit)
		return playlistsFetchedMsg(page, err)
	}
}

func (m *Model) fetchPassport(source services.PassportSource) tea.Cmd {
	return func() tea.Msg {
		passport, err := m.client.Passport(m.ctx, m.token, source, source.DefaultLimit())
		return passportFetchedMsg(passport, err)
	}
}

func (m *Model) fetchDemo() tea.Cmd {
	return func() tea.Msg {
		passport, err := m.client.DemoPassport(m.ctx, demoUserID)
		return passportFetchedMsg(passport, err)
	}
}

func (m *Model) renderMenu() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(m.loading)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}

func (m *Model) renderReport() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	return fmt.Sprintf("%s\n%s", m.report, helpView)
}
