package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global key bindings. View-local keys (table
// navigation, text editing) are handled by the views themselves.
type KeyMap struct {
	Quit       key.Binding
	Back       key.Binding
	Select     key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	TabHistory key.Binding
	TabUpload  key.Binding
	TabProfile key.Binding
	Refresh    key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Copy       key.Binding
	CopyMD     key.Binding
	Open       key.Binding
	Delete     key.Binding
	Edit       key.Binding
	Filter     key.Binding
	Logout     key.Binding
	Logs       key.Binding
	Command    key.Binding
	Help       key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev tab"),
	),
	TabHistory: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "history"),
	),
	TabUpload: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "upload"),
	),
	TabProfile: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "profile"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p", "prev page"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy url"),
	),
	CopyMD: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "copy markdown"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Edit: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "edit"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Logout: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "logout"),
	),
	Logs: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logs"),
	),
	Command: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "command"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Command, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TabHistory, k.TabUpload, k.TabProfile, k.NextTab},
		{k.Select, k.Back, k.NextPage, k.PrevPage, k.Refresh, k.Filter},
		{k.Copy, k.CopyMD, k.Open, k.Delete, k.Edit},
		{k.Logout, k.Logs, k.Command, k.Help, k.Quit},
	}
}
