package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down key.Binding
	MoveLeft, MoveRight   key.Binding
	Delete, DeleteState   key.Binding
	NewState, Rename      key.Binding
	Filter, Refresh, Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "prev column")),
		Right:       key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next column")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		MoveLeft:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "move left")),
		MoveRight:   key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "move right")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete card")),
		DeleteState: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete column")),
		NewState:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new column")),
		Rename:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename column")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter type")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.MoveLeft, k.MoveRight, k.Delete, k.NewState, k.Rename, k.DeleteState, k.Filter, k.Refresh, k.Quit}
}
