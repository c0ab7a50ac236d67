package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Selections
	QuantityUp    key.Binding
	QuantityDown  key.Binding
	QuantityStep  key.Binding
	QuantityBack  key.Binding
	Embellishment key.Binding
	Color         key.Binding
	MultiColor    key.Binding
	Reset         key.Binding

	// History
	Undo key.Binding
	Redo key.Binding

	// Pricing and quotes
	Price     key.Binding
	Save      key.Binding
	QuoteUp   key.Binding
	QuoteDown key.Binding
	LoadQuote key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		QuantityUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Quantity +1"),
		),
		QuantityDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "Quantity -1"),
		),
		QuantityStep: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Quantity +12"),
		),
		QuantityBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Quantity -12"),
		),
		Embellishment: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Next embellishment"),
		),
		Color: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Next color"),
		),
		MultiColor: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Toggle multi-color"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reset selections"),
		),

		Undo: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "Undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("r", "ctrl+y"),
			key.WithHelp("r", "Redo"),
		),

		Price: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Calculate price"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save quote"),
		),
		QuoteUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous quote"),
		),
		QuoteDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next quote"),
		),
		LoadQuote: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Load quote"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Price, k.Save, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.QuantityUp, k.QuantityDown, k.QuantityStep, k.QuantityBack},
		{k.Embellishment, k.Color, k.MultiColor, k.Reset},
		{k.Undo, k.Redo},
		{k.Price, k.Save, k.QuoteUp, k.QuoteDown, k.LoadQuote},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
