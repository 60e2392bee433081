package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	swap       key.Binding
	enter      key.Binding
	play       key.Binding
	next       key.Binding
	prev       key.Binding
	seekFwd    key.Binding
	seekBck    key.Binding
	voteA      key.Binding
	voteB      key.Binding
	back       key.Binding
	restart    key.Binding
	toggleHelp key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		swap:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch side")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		play:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous track")),
		seekFwd:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek forward")),
		seekBck:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek back")),
		voteA:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "vote A")),
		voteB:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "vote B")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "all keys")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp and FullHelp implement [help.KeyMap] for the comparison view,
// where the full binding set lives behind the ? toggle.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.swap, k.voteA, k.voteB, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.swap, k.enter},
		{k.play, k.next, k.prev, k.seekFwd, k.seekBck},
		{k.voteA, k.voteB, k.back, k.restart, k.quit},
	}
}
