package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the terminal client's bindings.
type KeyMap struct {
	Pegs   [3]key.Binding
	Reset  key.Binding
	Harder key.Binding
	Easier key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var Keys = KeyMap{
	Pegs: [3]key.Binding{
		key.NewBinding(key.WithKeys("1", "a"), key.WithHelp("1", "left peg")),
		key.NewBinding(key.WithKeys("2", "s"), key.WithHelp("2", "middle peg")),
		key.NewBinding(key.WithKeys("3", "d"), key.WithHelp("3", "right peg")),
	},
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Harder: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more disks")),
	Easier: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer disks")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit score")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpLine renders "key desc" pairs separated by dots.
func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
