package state

import (
	"maps"
	"slices"
	"time"
)

// Reduce returns the state that results from applying a to s. It never
// mutates s, never panics and performs no I/O. A nil state is treated as the
// initial state, missing sub-trees take their initial values, and an empty
// action leaves s unchanged.
func Reduce(s *State, a Action) *State {
	s = Normalize(s)
	if a.Payload == nil {
		return s
	}
	return a.Payload.reduce(s, a.Timestamp)
}

// next returns a shallow copy of the root so one sub-tree can be swapped.
func next(s *State) *State {
	n := *s
	return &n
}

func (p SetProduct) reduce(s *State, _ time.Time) *State {
	prod := *s.Product
	if p.ID != nil {
		prod.ID = *p.ID
	}
	if p.StyleNumber != nil {
		prod.StyleNumber = *p.StyleNumber
	}
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.BasePrice != nil {
		prod.BasePrice = *p.BasePrice
	}
	if p.Colors != nil {
		prod.Colors = slices.Clone(p.Colors)
	}
	if p.Sizes != nil {
		prod.Sizes = slices.Clone(p.Sizes)
	}
	if p.Options != nil {
		prod.Options = cloneAnyMap(p.Options)
	}
	n := next(s)
	n.Product = &prod
	return n
}

func (p UpdateQuantity) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	sel.Quantity = max(1, p.Quantity)
	n := next(s)
	n.Selections = &sel
	return n
}

func (p SelectColor) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	sel.Color = p.Color
	if p.MultiSelect {
		sel.Colors = slices.Clone(p.Colors)
		if sel.Colors == nil {
			sel.Colors = []string{}
		}
	} else {
		sel.Colors = []string{p.Color}
	}
	n := next(s)
	n.Selections = &sel
	return n
}

func (p UpdateSizes) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	sel.Sizes = maps.Clone(p.Sizes)
	if sel.Sizes == nil {
		sel.Sizes = map[string]int{}
	}
	n := next(s)
	n.Selections = &sel
	return n
}

func (p SetEmbellishmentType) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	sel.EmbellishmentType = p.Kind
	// Options are method specific; switching method drops them.
	sel.CustomOptions = map[string]any{}
	n := next(s)
	n.Selections = &sel
	return n
}

func (p UpdateLocations) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	sel.Locations = slices.Clone(p.Locations)
	if sel.Locations == nil {
		sel.Locations = []string{}
	}
	n := next(s)
	n.Selections = &sel
	return n
}

func (p UpdateCustomOptions) reduce(s *State, _ time.Time) *State {
	sel := *s.Selections
	merged := make(map[string]any, len(s.Selections.CustomOptions)+len(p.Options))
	for k, v := range s.Selections.CustomOptions {
		merged[k] = v
	}
	for k, v := range p.Options {
		merged[k] = cloneAny(v)
	}
	sel.CustomOptions = merged
	n := next(s)
	n.Selections = &sel
	return n
}

func (ResetSelections) reduce(s *State, _ time.Time) *State {
	n := next(s)
	n.Selections = initialSelections(s.Selections.EmbellishmentType)
	return n
}

func (p UpdatePricing) reduce(s *State, at time.Time) *State {
	pr := *s.Pricing
	if p.UnitPrice != nil {
		pr.UnitPrice = *p.UnitPrice
	}
	if p.TotalPrice != nil {
		pr.TotalPrice = *p.TotalPrice
	}
	if p.SetupFees != nil {
		pr.SetupFees = *p.SetupFees
	}
	if p.Discount != nil {
		pr.Discount = *p.Discount
	}
	if p.Breakdown != nil {
		pr.Breakdown = cloneAnyMap(p.Breakdown)
	}
	pr.LastCalculated = at
	n := next(s)
	n.Pricing = &pr
	return n
}

func (p SetPricingMatrix) reduce(s *State, _ time.Time) *State {
	pr := *s.Pricing
	pr.Matrix = cloneAnyMap(p.Matrix)
	n := next(s)
	n.Pricing = &pr
	return n
}

func (p SetCurrentQuote) reduce(s *State, _ time.Time) *State {
	q := *s.Quotes
	if p.Quote != nil {
		cur := p.Quote.Clone()
		q.Current = &cur
	} else {
		q.Current = nil
	}
	n := next(s)
	n.Quotes = &q
	return n
}

func (p SaveQuote) reduce(s *State, _ time.Time) *State {
	saved := slices.Clone(s.Quotes.Saved)
	quote := p.Quote.Clone()
	if i := slices.IndexFunc(saved, func(q Quote) bool { return q.ID == quote.ID }); i >= 0 {
		saved[i] = quote
	} else {
		saved = append(saved, quote)
	}
	current := quote.Clone()
	n := next(s)
	n.Quotes = &Quotes{Current: &current, Saved: saved}
	return n
}

func (p DeleteQuote) reduce(s *State, _ time.Time) *State {
	q := *s.Quotes
	q.Saved = slices.DeleteFunc(slices.Clone(s.Quotes.Saved), func(item Quote) bool {
		return item.ID == p.QuoteID
	})
	n := next(s)
	n.Quotes = &q
	return n
}

func (p SetLoading) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.Loading = p.Loading
	ui.LoadingMessage = p.Message
	n := next(s)
	n.UI = &ui
	return n
}

func (p AddError) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.Errors = append(slices.Clip(s.UI.Errors), p.Error)
	n := next(s)
	n.UI = &ui
	return n
}

func (ClearErrors) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.Errors = []string{}
	n := next(s)
	n.UI = &ui
	return n
}

func (p AddWarning) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.Warnings = append(slices.Clip(s.UI.Warnings), p.Warning)
	n := next(s)
	n.UI = &ui
	return n
}

func (ClearWarnings) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.Warnings = []string{}
	n := next(s)
	n.UI = &ui
	return n
}

func (p SetActiveTab) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.ActiveTab = p.Tab
	n := next(s)
	n.UI = &ui
	return n
}

func (p ToggleSection) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	if i := slices.Index(s.UI.ExpandedSections, p.Section); i >= 0 {
		ui.ExpandedSections = slices.Delete(slices.Clone(s.UI.ExpandedSections), i, i+1)
	} else {
		ui.ExpandedSections = append(slices.Clip(s.UI.ExpandedSections), p.Section)
	}
	n := next(s)
	n.UI = &ui
	return n
}

func (p SetModalOpen) reduce(s *State, _ time.Time) *State {
	ui := *s.UI
	ui.ModalOpen = p.Open
	n := next(s)
	n.UI = &ui
	return n
}

func (p ToggleFeature) reduce(s *State, _ time.Time) *State {
	f := *s.Features
	flag := f.flag(p.Feature)
	if flag == nil {
		return s
	}
	*flag = !*flag
	n := next(s)
	n.Features = &f
	return n
}

func (ResetAll) reduce(*State, time.Time) *State { return Initial() }

func (Undo) reduce(s *State, _ time.Time) *State { return s }
func (Redo) reduce(s *State, _ time.Time) *State { return s }
func (Import) reduce(s *State, _ time.Time) *State { return s }
