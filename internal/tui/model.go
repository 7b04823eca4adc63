// Package tui is the interactive terminal explorer: a search box, the weather
// line and the attraction cards, with keys to favorite and manage favorites.
package tui

import (
	"context"
	"fmt"
	"strings"

	"travelsnap/internal/explorer"
	"travelsnap/internal/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxMessages = 5

type mode int

const (
	modeMap mode = iota
	modeFavorites
)

// opDoneMsg carries what an explorer call reported once it returns
type opDoneMsg struct {
	notices []string
	target  explorer.View
	err     error
}

// recorder is the explorer UI for one command
type recorder struct {
	notices []string
	target  explorer.View
}

func (r *recorder) Alert(msg string) {
	r.notices = append(r.notices, msg)
}

func (r *recorder) Navigate(v explorer.View) {
	r.target = v
}

// Model is the bubbletea model of the explorer
type Model struct {
	ctx context.Context
	ex  *explorer.Explorer

	input    textinput.Model
	spinner  spinner.Model
	busy     bool
	mode     mode
	selected int
	state    explorer.State
	messages []string

	// LoggedOut is set when the session ended while the program ran
	LoggedOut bool
	width     int
}

// New creates the model. ctx bounds every explorer call it makes.
func New(ctx context.Context, ex *explorer.Explorer) Model {
	ti := textinput.New()
	ti.Placeholder = "Search a place (enter)"
	ti.CharLimit = 120
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return Model{
		ctx:     ctx,
		ex:      ex,
		input:   ti,
		spinner: s,
		state:   ex.Snapshot(),
		width:   80,
	}
}

// Init checks the session before anything else happens
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run(func(ctx context.Context, ui explorer.UI) error {
		m.ex.RequireSession(ctx, ui)
		return nil
	}))
}

// run executes op off the update loop and reports back with opDoneMsg
func (m Model) run(op func(ctx context.Context, ui explorer.UI) error) tea.Cmd {
	return func() tea.Msg {
		ui := &recorder{}
		err := op(m.ctx, ui)
		return opDoneMsg{notices: ui.notices, target: ui.target, err: err}
	}
}

func (m Model) start(op func(ctx context.Context, ui explorer.UI) error) (Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.run(op))
}

// Update handles key presses and finished explorer calls
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.busy = false
		m.messages = append(m.messages, msg.notices...)
		if len(m.messages) > maxMessages {
			m.messages = m.messages[len(m.messages)-maxMessages:]
		}
		m.state = m.ex.Snapshot()
		m.selected = clampIndex(m.selected, len(m.cards()))
		if msg.target == explorer.ViewLogin {
			m.LoggedOut = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.busy {
			return m, nil
		}
		query := m.input.Value()
		m.mode = modeMap
		m.input.Blur()
		return m.start(func(ctx context.Context, ui explorer.UI) error {
			return m.ex.Search(ctx, ui, query)
		})
	case "esc", "tab":
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "/":
		m.mode = modeMap
		return m, m.input.Focus()
	case "up", "k":
		m.selected = clampIndex(m.selected-1, len(m.cards()))
	case "down", "j":
		m.selected = clampIndex(m.selected+1, len(m.cards()))
	case "esc", "m":
		m.mode = modeMap
		m.selected = 0
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter", "f":
		if m.mode != modeMap {
			return m, nil
		}
		return m.dispatchSelected(nil)
	case "d":
		if m.mode != modeFavorites {
			return m, nil
		}
		return m.dispatchSelected(func(ctx context.Context, ui explorer.UI) error {
			_, err := m.ex.ListFavorites(ctx, ui)
			return err
		})
	case "v":
		m.mode = modeFavorites
		m.selected = 0
		return m.start(func(ctx context.Context, ui explorer.UI) error {
			_, err := m.ex.ListFavorites(ctx, ui)
			return err
		})
	case "r":
		return m.start(m.ex.RefreshWeather)
	case "l":
		return m.start(m.ex.Logout)
	}
	return m, nil
}

// dispatchSelected sends the selected card's action through the explorer's
// single dispatch entry point, then runs after when it succeeded. The action
// carries the generation of the cards on screen, so a list the explorer has
// since replaced is dropped as stale.
func (m Model) dispatchSelected(after func(ctx context.Context, ui explorer.UI) error) (tea.Model, tea.Cmd) {
	cards := m.cards()
	if m.selected >= len(cards) {
		return m, nil
	}
	card := cards[m.selected]
	action := explorer.Action{
		Kind:       card.Action.Kind,
		ID:         card.Action.ID,
		Generation: m.generation(),
	}

	return m.start(func(ctx context.Context, ui explorer.UI) error {
		if err := m.ex.Dispatch(ctx, ui, action); err != nil {
			return err
		}
		if after != nil {
			return after(ctx, ui)
		}
		return nil
	})
}

func (m Model) cards() []render.Card {
	if m.mode == modeFavorites {
		return m.state.Favorites
	}
	return m.state.Cards
}

func (m Model) generation() int {
	if m.mode == modeFavorites {
		return m.state.FavoritesGeneration
	}
	return m.state.Generation
}

// View renders the screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(render.TitleStyle.Render("TravelSnap"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " Working...\n\n")
	}

	switch m.mode {
	case modeFavorites:
		b.WriteString(render.SubtitleStyle.Render("Favorites"))
		b.WriteString("\n")
		b.WriteString(render.TerminalCards(m.state.Favorites, m.selected))
	default:
		b.WriteString(m.mapSummary())
		b.WriteString("\n")
		b.WriteString(render.SubtitleStyle.Render("Attractions"))
		b.WriteString("\n")
		b.WriteString(render.TerminalCards(m.state.Cards, m.selected))
	}

	if len(m.messages) > 0 {
		b.WriteString("\n\n")
		for _, msg := range m.messages {
			b.WriteString(render.InfoStyle.Render("• " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(render.DimStyle.Render(m.help()))
	return b.String()
}

func (m Model) mapSummary() string {
	view := m.state.View
	lines := []string{
		fmt.Sprintf("Center %.4f, %.4f  zoom %d", view.Center.Lat, view.Center.Lon, view.Zoom),
	}
	if m.state.Location != nil {
		lines = append(lines, render.SuccessStyle.Render(m.state.Location.DisplayName))
	}
	if m.state.WeatherText != "" {
		lines = append(lines, m.state.WeatherText)
	}
	if view.Highlighted != "" {
		lines = append(lines, "Country: "+view.Highlighted)
	}
	return render.BoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) help() string {
	if m.input.Focused() {
		return "enter search • tab leave input • ctrl+c quit"
	}
	if m.mode == modeFavorites {
		return "↑/↓ select • d remove • m map • / search • l logout • q quit"
	}
	return "↑/↓ select • f favorite • v favorites • r weather • / search • l logout • q quit"
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Run starts the interactive explorer and blocks until it exits
func Run(ctx context.Context, ex *explorer.Explorer) (Model, error) {
	final, err := tea.NewProgram(New(ctx, ex), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, err
	}
	m, _ := final.(Model)
	return m, nil
}
