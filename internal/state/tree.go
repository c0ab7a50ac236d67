package state

import (
	"maps"
	"slices"
	"time"
)

// Embellishment names the decoration method a quote is priced for.
type Embellishment string

const (
	EmbellishmentNone        Embellishment = ""
	EmbellishmentEmbroidery  Embellishment = "embroidery"
	EmbellishmentCapEmb      Embellishment = "cap-embroidery"
	EmbellishmentScreenPrint Embellishment = "screenprint"
	EmbellishmentDTG         Embellishment = "dtg"
	EmbellishmentDTF         Embellishment = "dtf"
)

// Embellishments lists the known decoration methods in display order.
func Embellishments() []Embellishment {
	return []Embellishment{
		EmbellishmentEmbroidery,
		EmbellishmentCapEmb,
		EmbellishmentScreenPrint,
		EmbellishmentDTG,
		EmbellishmentDTF,
	}
}

// State is the root of the store's tree. A *State handed out by the store is
// never modified afterwards; the reducer builds a new root for every accepted
// action and shares the sub-trees it did not touch.
type State struct {
	Product    *Product    `json:"product"`
	Selections *Selections `json:"selections"`
	Pricing    *Pricing    `json:"pricing"`
	Quotes     *Quotes     `json:"quotes"`
	UI         *UI         `json:"ui"`
	Features   *Features   `json:"features"`
}

// Product describes the garment being quoted.
type Product struct {
	ID          string         `json:"id"`
	StyleNumber string         `json:"styleNumber"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	BasePrice   float64        `json:"basePrice"`
	Colors      []string       `json:"colors"`
	Sizes       []string       `json:"sizes"`
	Options     map[string]any `json:"options"`
}

// Selections holds what the customer picked.
type Selections struct {
	Quantity          int            `json:"quantity"`
	Color             string         `json:"color"`
	Colors            []string       `json:"colors"`
	Sizes             map[string]int `json:"sizes"`
	EmbellishmentType Embellishment  `json:"embellishmentType"`
	Locations         []string       `json:"locations"`
	CustomOptions     map[string]any `json:"customOptions"`
}

// Pricing holds the last calculator output plus the matrix fetched for the
// product category.
type Pricing struct {
	UnitPrice      float64        `json:"unitPrice"`
	TotalPrice     float64        `json:"totalPrice"`
	SetupFees      float64        `json:"setupFees"`
	Discount       float64        `json:"discount"`
	Breakdown      map[string]any `json:"breakdown"`
	Matrix         map[string]any `json:"matrix"`
	LastCalculated time.Time      `json:"lastCalculated"`
}

// Quote is a saved snapshot of a priced configuration.
type Quote struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Product    Product    `json:"product"`
	Selections Selections `json:"selections"`
	Pricing    Pricing    `json:"pricing"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Quotes tracks the quote being edited and the saved list.
type Quotes struct {
	Current *Quote  `json:"current"`
	Saved   []Quote `json:"saved"`
}

// UI carries presentation flags that outlive a single render.
type UI struct {
	Loading          bool     `json:"loading"`
	LoadingMessage   string   `json:"loadingMessage"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	ActiveTab        string   `json:"activeTab"`
	ExpandedSections []string `json:"expandedSections"`
	ModalOpen        bool     `json:"modalOpen"`
}

// Features are runtime feature flags.
type Features struct {
	MultiColorSelection bool `json:"multiColorSelection"`
	SizeBreakdown       bool `json:"sizeBreakdown"`
	QuickQuote          bool `json:"quickQuote"`
	AutoSave            bool `json:"autoSave"`
	PriceOptimization   bool `json:"priceOptimization"`
}

// Feature flag names accepted by TOGGLE_FEATURE.
const (
	FeatureMultiColorSelection = "multiColorSelection"
	FeatureSizeBreakdown       = "sizeBreakdown"
	FeatureQuickQuote          = "quickQuote"
	FeatureAutoSave            = "autoSave"
	FeaturePriceOptimization   = "priceOptimization"
)

// FeatureNames lists every flag name in declaration order.
func FeatureNames() []string {
	return []string{
		FeatureMultiColorSelection,
		FeatureSizeBreakdown,
		FeatureQuickQuote,
		FeatureAutoSave,
		FeaturePriceOptimization,
	}
}

// Enabled reports the value of a named flag; unknown names are disabled.
func (f Features) Enabled(name string) bool {
	if p := f.flag(name); p != nil {
		return *p
	}
	return false
}

func (f *Features) flag(name string) *bool {
	switch name {
	case FeatureMultiColorSelection:
		return &f.MultiColorSelection
	case FeatureSizeBreakdown:
		return &f.SizeBreakdown
	case FeatureQuickQuote:
		return &f.QuickQuote
	case FeatureAutoSave:
		return &f.AutoSave
	case FeaturePriceOptimization:
		return &f.PriceOptimization
	default:
		return nil
	}
}

// Initial returns a fresh initial state.
func Initial() *State {
	return &State{
		Product:    initialProduct(),
		Selections: initialSelections(EmbellishmentNone),
		Pricing:    initialPricing(),
		Quotes:     &Quotes{Saved: []Quote{}},
		UI: &UI{
			Errors:           []string{},
			Warnings:         []string{},
			ExpandedSections: []string{},
		},
		Features: DefaultFeatures(),
	}
}

// Normalize returns s when every sub-tree is present, otherwise a copy with
// the missing sub-trees taken from the initial state. A nil s yields Initial().
func Normalize(s *State) *State {
	if s == nil {
		return Initial()
	}
	if s.Product != nil && s.Selections != nil && s.Pricing != nil &&
		s.Quotes != nil && s.UI != nil && s.Features != nil {
		return s
	}
	base := Initial()
	n := *s
	if n.Product == nil {
		n.Product = base.Product
	}
	if n.Selections == nil {
		n.Selections = base.Selections
	}
	if n.Pricing == nil {
		n.Pricing = base.Pricing
	}
	if n.Quotes == nil {
		n.Quotes = base.Quotes
	}
	if n.UI == nil {
		n.UI = base.UI
	}
	if n.Features == nil {
		n.Features = base.Features
	}
	return &n
}

// DefaultFeatures returns the built-in flag defaults.
func DefaultFeatures() *Features {
	return &Features{
		QuickQuote:        true,
		AutoSave:          true,
		PriceOptimization: true,
	}
}

func initialProduct() *Product {
	return &Product{
		Colors:  []string{},
		Sizes:   []string{},
		Options: map[string]any{},
	}
}

func initialSelections(kind Embellishment) *Selections {
	return &Selections{
		Quantity:          1,
		Colors:            []string{},
		Sizes:             map[string]int{},
		EmbellishmentType: kind,
		Locations:         []string{},
		CustomOptions:     map[string]any{},
	}
}

func initialPricing() *Pricing {
	return &Pricing{Breakdown: map[string]any{}}
}

// Clone returns a copy of the selections that shares nothing mutable with s.
func (s Selections) Clone() Selections {
	out := s
	out.Colors = slices.Clone(s.Colors)
	out.Sizes = maps.Clone(s.Sizes)
	out.Locations = slices.Clone(s.Locations)
	out.CustomOptions = cloneAnyMap(s.CustomOptions)
	return out
}

// Clone returns a copy of the product that shares nothing mutable with p.
func (p Product) Clone() Product {
	out := p
	out.Colors = slices.Clone(p.Colors)
	out.Sizes = slices.Clone(p.Sizes)
	out.Options = cloneAnyMap(p.Options)
	return out
}

// Clone returns a copy of the pricing that shares nothing mutable with p.
func (p Pricing) Clone() Pricing {
	out := p
	out.Breakdown = cloneAnyMap(p.Breakdown)
	out.Matrix = cloneAnyMap(p.Matrix)
	return out
}

// Clone returns a deep copy of the quote.
func (q Quote) Clone() Quote {
	out := q
	out.Product = q.Product.Clone()
	out.Selections = q.Selections.Clone()
	out.Pricing = q.Pricing.Clone()
	return out
}

// cloneAnyMap copies nested maps and slices found in JSON-shaped values.
func cloneAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneAny(v)
	}
	return dst
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneAny(item)
		}
		return out
	case map[string]int:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
