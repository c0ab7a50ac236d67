package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/actions"
	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/prefs"
	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Runner     *actions.Runner
	Calculator calculator.Calculator
	Cache      *selectors.Cache
	ThemeName  string
	PrefsPath  string
	Logger     *zap.Logger
	// Now is the clock used for staleness badges. Defaults to time.Now.
	Now func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	runner    *actions.Runner
	calc      calculator.Calculator
	cache     *selectors.Cache
	prefsPath string
	logger    *zap.Logger
	now       func() time.Time

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	current       *state.State
	lastAction    state.ActionType
	selectedQuote int
	busy          string
	flash         string
	flashErr      bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cache := opts.Cache
	if cache == nil {
		cache = selectors.NewCache()
	}
	calc := opts.Calculator
	if calc == nil {
		calc = calculator.NewEngine(nil)
	}
	runner := opts.Runner
	if runner == nil && opts.Store != nil {
		runner = actions.NewRunner(opts.Store, actions.Extras{}, logger)
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = ThemeNames()[0]
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		runner:    runner,
		calc:      calc,
		cache:     cache,
		prefsPath: opts.PrefsPath,
		logger:    logger.Named("ui"),
		now:       now,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
	if m.store != nil {
		m.current = m.store.State()
	} else {
		m.current = state.Initial()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd(time.Second))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case stateMsg:
		m.refresh(msg.action)
		return m, nil

	case effectMsg:
		m.busy = ""
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("%s failed: %v", msg.label, msg.err), true)
		} else {
			m.setFlash(msg.label+" done", false)
		}
		m.refresh("")
		return m, nil

	case tickMsg:
		// Re-render so the staleness badge ages without a store change.
		return m, tickCmd(time.Second)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}

	if m.store == nil {
		return m, nil
	}
	s := m.store.State()

	switch {
	case key.Matches(msg, m.keys.QuantityUp):
		m.dispatch(actions.UpdateQuantity(s.Selections.Quantity + 1))
	case key.Matches(msg, m.keys.QuantityDown):
		m.dispatch(actions.UpdateQuantity(s.Selections.Quantity - 1))
	case key.Matches(msg, m.keys.QuantityStep):
		m.dispatch(actions.UpdateQuantity(s.Selections.Quantity + 12))
	case key.Matches(msg, m.keys.QuantityBack):
		m.dispatch(actions.UpdateQuantity(max(1, s.Selections.Quantity-12)))
	case key.Matches(msg, m.keys.Embellishment):
		m.dispatch(actions.SetEmbellishmentType(nextEmbellishment(s.Selections.EmbellishmentType)))
	case key.Matches(msg, m.keys.Color):
		m.cycleColor(s)
	case key.Matches(msg, m.keys.MultiColor):
		m.dispatch(actions.ToggleFeature(state.FeatureMultiColorSelection))
	case key.Matches(msg, m.keys.Reset):
		m.dispatch(actions.ResetSelections())
	case key.Matches(msg, m.keys.Undo):
		if !m.store.Undo() {
			m.setFlash("Nothing to undo", false)
		}
	case key.Matches(msg, m.keys.Redo):
		if !m.store.Redo() {
			m.setFlash("Nothing to redo", false)
		}
	case key.Matches(msg, m.keys.QuoteUp):
		if m.selectedQuote > 0 {
			m.selectedQuote--
		}
	case key.Matches(msg, m.keys.QuoteDown):
		if m.selectedQuote < len(m.recentQuotes())-1 {
			m.selectedQuote++
		}
	case key.Matches(msg, m.keys.Price):
		return m.startEffect("Pricing", actions.CalculatePricing(m.calc))
	case key.Matches(msg, m.keys.Save):
		return m.startEffect("Save", actions.SaveCurrentQuote(""))
	case key.Matches(msg, m.keys.LoadQuote):
		quotes := m.recentQuotes()
		if m.selectedQuote < len(quotes) {
			return m.startEffect("Load", actions.LoadQuote(quotes[m.selectedQuote].ID))
		}
	}

	m.refresh("")
	return m, nil
}

// dispatch applies p synchronously. The store subscription forwards the
// change asynchronously, so this never blocks on the program loop.
func (m *Model) dispatch(p state.Payload) {
	if !m.store.Dispatch(p) {
		m.setFlash(fmt.Sprintf("%s was rejected", p.Type()), true)
		return
	}
	m.flash = ""
}

func (m *Model) startEffect(label string, eff actions.Effect) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		m.setFlash(m.busy+" already running", false)
		return *m, nil
	}
	m.busy = label
	return *m, runEffectCmd(m.ctx, m.runner, label, eff)
}

func (m *Model) cycleColor(s *state.State) {
	colors := selectors.AvailableColors(s)
	if len(colors) == 0 {
		m.setFlash("Product has no colors", false)
		return
	}
	sel := s.Selections
	if !s.Features.MultiColorSelection {
		m.dispatch(actions.SelectColor(nextString(colors, sel.Color)))
		return
	}
	// Multi-color adds the next unselected color; once all are picked it
	// starts over with the first.
	for _, c := range colors {
		if !slices.Contains(sel.Colors, c) {
			primary := sel.Color
			if primary == "" {
				primary = c
			}
			m.dispatch(actions.SelectColors(primary, append(slices.Clone(sel.Colors), c)))
			return
		}
	}
	m.dispatch(actions.SelectColor(colors[0]))
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath == "" {
		return
	}
	p, _ := prefs.Load(m.prefsPath)
	p.Theme = m.theme.Name
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m *Model) refresh(action state.ActionType) {
	if m.store == nil {
		return
	}
	m.current = m.store.State()
	if action != "" {
		m.lastAction = action
	}
	if n := len(m.recentQuotes()); m.selectedQuote >= n {
		m.selectedQuote = max(0, n-1)
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m Model) recentQuotes() []state.Quote {
	return m.cache.RecentQuotes.Get(m.current, quoteListLimit)
}

func nextEmbellishment(cur state.Embellishment) state.Embellishment {
	all := state.Embellishments()
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

func nextString(values []string, cur string) string {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// Messages

type tickMsg time.Time

// stateMsg signals a store change. The model reads the state itself so
// out-of-order delivery cannot show an older tree.
type stateMsg struct {
	action state.ActionType
}

type effectMsg struct {
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func runEffectCmd(ctx context.Context, runner *actions.Runner, label string, eff actions.Effect) tea.Cmd {
	return func() tea.Msg {
		return effectMsg{label: label, err: runner.Run(ctx, eff)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Store == nil {
		return errors.New("ui requires a store")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := opts.Store.Subscribe(func(_, _ *state.State, a state.Action) {
		go p.Send(stateMsg{action: a.Type()})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
