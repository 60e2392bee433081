package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/abrank/internal/catalog"
	"github.com/desertthunder/abrank/internal/playback"
	"github.com/desertthunder/abrank/internal/playlists"
	"github.com/desertthunder/abrank/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SeedListView ViewState = iota
	ComparisonView
	RatingView
	ResultView
)

// dimensions in display order for the rating view.
var dimensions = []session.Dimension{
	session.DimEmotional,
	session.DimNarrative,
	session.DimKeepability,
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	machine *session.Machine
	player  *playback.Controller
	catalog *catalog.Catalog

	width  int
	height int

	seedList list.Model

	focus   session.Arm
	cursorA int
	cursorB int

	ratingCursor int

	playbackChan chan playback.State
	playback     playback.State
	progressBar  progress.Model

	err  error
	help help.Model
	keys keyMap
}

type playbackMsg playback.State

type voteSubmittedMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies. Wire
// [Model.OnPlayback] as the playback controller's update callback before
// starting the program.
func NewModel(ctx context.Context, machine *session.Machine, player *playback.Controller, cat *catalog.Catalog) *Model {
	items := make([]list.Item, 0, len(cat.Seeds()))
	for _, seed := range cat.Seeds() {
		items = append(items, seedItem{seed: seed, label: cat.Label(seed.Category)})
	}

	seedList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	seedList.Title = "Pick a seed track"
	seedList.SetShowStatusBar(false)

	return &Model{
		ctx:          ctx,
		view:         SeedListView,
		machine:      machine,
		player:       player,
		catalog:      cat,
		seedList:     seedList,
		focus:        session.ArmA,
		playbackChan: make(chan playback.State, 50),
		progressBar:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// OnPlayback feeds a playback snapshot into the update loop. Called from the
// controller's goroutines; drops updates rather than blocking them.
func (m *Model) OnPlayback(s playback.State) {
	select {
	case m.playbackChan <- s:
	default:
	}
}

// Init starts the playback update listener.
func (m *Model) Init() tea.Cmd {
	return m.waitForPlayback()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seedList.SetSize(msg.Width-4, msg.Height-8)
		m.progressBar.Width = 32
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SeedListView:
			return m.handleSeedListKeys(msg)
		case ComparisonView:
			return m.handleComparisonKeys(msg)
		case RatingView:
			return m.handleRatingKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playbackMsg:
		m.playback = playback.State(msg)
		return m, m.waitForPlayback()

	case voteSubmittedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.view = ResultView
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SeedListView:
		return m.renderSeedList()
	case ComparisonView:
		return m.renderComparison()
	case RatingView:
		return m.renderRating()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSeedListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		selected := m.seedList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item, ok := selected.(seedItem)
		if !ok {
			return m, nil
		}
		if err := m.machine.Start(item.seed.ID); err != nil {
			m.err = err
			return m, nil
		}
		s := m.machine.Session()
		m.player.SetQueue(s.OrderingA, s.OrderingB)
		m.focus = session.ArmA
		m.cursorA, m.cursorB = 0, 0
		m.view = ComparisonView
		return m, nil
	}

	var cmd tea.Cmd
	m.seedList, cmd = m.seedList.Update(msg)
	return m, cmd
}

func (m *Model) handleComparisonKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.machine.Session()

	switch {
	case key.Matches(msg, m.keys.quit):
		m.player.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		if err := m.machine.BackToSeeds(); err == nil {
			m.view = SeedListView
		}
		return m, nil

	case key.Matches(msg, m.keys.swap):
		if m.focus == session.ArmA {
			m.focus = session.ArmB
		} else {
			m.focus = session.ArmA
		}
		return m, nil

	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.play), key.Matches(msg, m.keys.enter):
		if item, ok := m.focusedItem(s); ok {
			m.player.Play(m.ctx, item, m.focus)
		}
		return m, nil

	case key.Matches(msg, m.keys.next):
		m.player.Next(m.ctx)
		return m, nil

	case key.Matches(msg, m.keys.prev):
		m.player.Previous(m.ctx)
		return m, nil

	case key.Matches(msg, m.keys.seekFwd):
		m.player.Seek(m.playback.Progress/100 + 0.1)
		return m, nil

	case key.Matches(msg, m.keys.seekBck):
		m.player.Seek(m.playback.Progress/100 - 0.1)
		return m, nil

	case key.Matches(msg, m.keys.voteA):
		return m.vote(session.ArmA)

	case key.Matches(msg, m.keys.voteB):
		return m.vote(session.ArmB)

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

func (m *Model) handleRatingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dim := dimensions[m.ratingCursor]
	current := m.machine.Session().Ratings.Get(dim)

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		if err := m.machine.BackToComparison(); err == nil {
			m.view = ComparisonView
		}
		return m, nil

	case key.Matches(msg, m.keys.up):
		if m.ratingCursor > 0 {
			m.ratingCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if m.ratingCursor < len(dimensions)-1 {
			m.ratingCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.seekBck):
		m.err = m.machine.SetRating(dim, current-1)
		return m, nil

	case key.Matches(msg, m.keys.seekFwd):
		m.err = m.machine.SetRating(dim, current+1)
		return m, nil

	case key.Matches(msg, m.keys.enter):
		return m, m.submit()
	}

	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.machine.Reset()
		m.player.Stop()
		m.playback = playback.State{}
		m.ratingCursor = 0
		m.err = nil
		m.view = SeedListView
		return m, nil
	}
	return m, nil
}

func (m *Model) vote(arm session.Arm) (tea.Model, tea.Cmd) {
	if err := m.machine.Choose(arm); err != nil {
		m.err = err
		return m, nil
	}
	if err := m.machine.ToRating(); err != nil {
		m.err = err
		return m, nil
	}
	m.playback = playback.State{}
	m.ratingCursor = 0
	m.view = RatingView
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		return voteSubmittedMsg{err: m.machine.Submit(m.ctx)}
	}
}

func (m *Model) waitForPlayback() tea.Cmd {
	return func() tea.Msg {
		return playbackMsg(<-m.playbackChan)
	}
}

func (m *Model) moveCursor(delta int) {
	s := m.machine.Session()
	ordering := s.Ordering(m.focus)
	if len(ordering) == 0 {
		return
	}

	cursor := &m.cursorA
	if m.focus == session.ArmB {
		cursor = &m.cursorB
	}

	*cursor += delta
	if *cursor < 0 {
		*cursor = 0
	}
	if *cursor >= len(ordering) {
		*cursor = len(ordering) - 1
	}
}

func (m *Model) focusedItem(s *session.Session) (playlists.Item, bool) {
	ordering := s.Ordering(m.focus)
	cursor := m.cursorA
	if m.focus == session.ArmB {
		cursor = m.cursorB
	}
	if cursor < 0 || cursor >= len(ordering) {
		return playlists.Item{}, false
	}
	return ordering[cursor], true
}

func (m *Model) renderSeedList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.seedList.View(), helpView)
}

func (m *Model) renderComparison() string {
	s := m.machine.Session()

	title := styles.title.Render(fmt.Sprintf("Which playlist fits '%s' better?", s.Seed.Title))

	colA := m.renderColumn("Playlist A", session.ArmA, s.OrderingA, m.cursorA)
	colB := m.renderColumn("Playlist B", session.ArmB, s.OrderingB, m.cursorB)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, colA, " ", colB)

	var player string
	if m.playback.Visible {
		player = m.renderPlayer()
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, columns, player, m.help.View(m.keys))
}

func (m *Model) renderColumn(name string, arm session.Arm, ordering playlists.Ordering, cursor int) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(name))
	b.WriteString("\n")

	for i, item := range ordering {
		marker := "  "
		if i == cursor && m.focus == arm {
			marker = "> "
		}

		line := fmt.Sprintf("%s%d. %s - %s", marker, item.Position, item.Artist, item.Title)
		if m.playback.MediaID != "" && m.playback.MediaID == item.MediaID && m.playback.Arm == arm {
			line = styles.ok.Render(line + " ♪")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := columnStyle
	if m.focus == arm {
		style = focusedColumnStyle
	}
	return style.Render(b.String())
}

func (m *Model) renderPlayer() string {
	status := "▶"
	if !m.playback.Playing {
		status = "⏸"
	}

	bar := m.progressBar.ViewAs(m.playback.Progress / 100)
	track := fmt.Sprintf("%s %s - %s", status, m.playback.Item.Artist, m.playback.Item.Title)
	if !m.playback.Item.Playable() {
		track = styles.warn.Render(track + " (no audio available)")
	}

	return fmt.Sprintf("\n%s\n%s\n", track, bar)
}

func (m *Model) renderRating() string {
	s := m.machine.Session()

	title := styles.title.Render(fmt.Sprintf("Rate playlist %s", s.Choice))

	var b strings.Builder
	for i, dim := range dimensions {
		marker := "  "
		if i == m.ratingCursor {
			marker = "> "
		}

		value := s.Ratings.Get(dim)
		scale := strings.Repeat("◆", value) + strings.Repeat("◇", session.RatingMax-value)
		b.WriteString(fmt.Sprintf("%s%-12s %s %d\n", marker, dim, scale, value))
	}

	helpKeys := []key.Binding{m.keys.seekBck, m.keys.seekFwd, m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderResult() string {
	s := m.machine.Session()

	winner, err := s.WinningSource()
	if err != nil {
		return styles.err.Render(fmt.Sprintf("No result available: %v\n\nPress r to restart, q to quit", err))
	}

	title := styles.ok.Render("✓ Vote recorded!")
	reveal := fmt.Sprintf(
		"\nYou picked playlist %s, which was the %s ordering.\n\nEmotional: %d\nNarrative: %d\nKeepability: %d\n",
		s.Choice,
		winner,
		s.Ratings.Get(session.DimEmotional),
		s.Ratings.Get(session.DimNarrative),
		s.Ratings.Get(session.DimKeepability),
	)

	footer := styles.help.Render("r restart • q quit")

	return fmt.Sprintf("%s\n%s\n%s", title, reveal, footer)
}
