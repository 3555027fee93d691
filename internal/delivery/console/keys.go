package console

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	BackTab  key.Binding
	Refresh  key.Binding
	Export   key.Binding
	Enter    key.Binding
	Esc      key.Binding
	Edit     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Up       key.Binding
	Down     key.Binding
	Days     key.Binding
	Filter   key.Binding
	Full     key.Binding
	Random   key.Binding
	Limit    key.Binding
	Preview  key.Binding
	Linked   key.Binding
	Status   key.Binding
	Dataset  key.Binding
	Demo     key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	BackTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Export:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Esc:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Edit:     key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "edit input")),
	PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous page")),
	NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Days:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date range")),
	Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
	Full:     key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fetch all columns")),
	Random:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "random users")),
	Limit:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "row limit")),
	Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "record preview")),
	Linked:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "linked transaction")),
	Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
	Dataset:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "chart")),
	Demo:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "demo query")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.BackTab, k.Refresh, k.Export, k.Help, k.Quit},
		{k.Up, k.Down, k.Enter, k.Esc, k.Edit},
		{k.PrevPage, k.NextPage, k.Days, k.Filter, k.Status, k.Linked},
		{k.Full, k.Random, k.Limit, k.Preview, k.Dataset, k.Demo},
	}
}

// tabHelp is the context line for the active tab.
func tabHelp(tab string) string {
	switch tab {
	case "events":
		return "/: user id | enter: fetch | F: all columns | R: random ids | esc: clear"
	case "browser":
		return "j/k: move | l: limit | enter: expand blob | p: preview | x: export | r: reload"
	case "query":
		return "/: edit query | enter: run"
	case "transactions":
		return "[ ]: page | d: days | x: export | r: reload"
	case "alerts":
		return "j/k: move | enter: open | s: status | t: transaction | [ ]: page | d: days | f: filter | x: export"
	case "dashboards":
		return "v: chart | r: recompute"
	case "health":
		return "r: probe | D: demo query"
	default:
		return ""
	}
}
