package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	prevPage key.Binding
	nextPage key.Binding
	first    key.Binding
	last     key.Binding
	pageSize key.Binding
	toggle   key.Binding
	filter   key.Binding
	category key.Binding
	switchTo key.Binding
	create   key.Binding
	edit     key.Binding
	remove   key.Binding
	open     key.Binding
	reload   key.Binding
	logout   key.Binding
	enter    key.Binding
	back     key.Binding
	next     key.Binding
	prev     key.Binding
	submit   key.Binding
	yes      key.Binding
	no       key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		prevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		nextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		first:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		pageSize: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "page size")),
		toggle:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cards/table")),
		filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category filter")),
		switchTo: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "videos/categories")),
		create:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prevPage, k.nextPage, k.first, k.last},
		{k.pageSize, k.toggle, k.filter, k.category, k.switchTo},
		{k.create, k.edit, k.remove, k.open, k.reload},
		{k.logout, k.help, k.quit},
	}
}

// formKeys are the bindings shown under a form.
func (k keyMap) formKeys() []key.Binding {
	return []key.Binding{k.next, k.prev, k.submit, k.back}
}
