package state

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func act(p Payload) Action {
	return Action{Payload: p, Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Seq: 1}
}

func encode(t *testing.T, s *State) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Initial()
	s = Reduce(s, act(UpdateCustomOptions{Options: map[string]any{"stitches": 8000}}))
	s = Reduce(s, act(AddError{Error: "first"}))
	s = Reduce(s, act(SaveQuote{Quote: Quote{ID: "q1", Name: "One"}}))
	before := encode(t, s)

	payloads := []Payload{
		SetProduct{Name: ptr("Tee"), Colors: []string{"Red"}},
		UpdateQuantity{Quantity: 48},
		SelectColor{Color: "Navy", MultiSelect: true, Colors: []string{"Navy", "Red"}},
		UpdateSizes{Sizes: map[string]int{"M": 10}},
		SetEmbellishmentType{Kind: EmbellishmentDTG},
		UpdateLocations{Locations: []string{"front"}},
		UpdateCustomOptions{Options: map[string]any{"colors": 3}},
		ResetSelections{},
		UpdatePricing{UnitPrice: ptr(4.5)},
		SetPricingMatrix{Matrix: map[string]any{"tiers": []any{1.0}}},
		SetCurrentQuote{Quote: &Quote{ID: "q2"}},
		SaveQuote{Quote: Quote{ID: "q1", Name: "Renamed"}},
		DeleteQuote{QuoteID: "q1"},
		SetLoading{Loading: true, Message: "busy"},
		AddError{Error: "second"},
		ClearErrors{},
		AddWarning{Warning: "careful"},
		ClearWarnings{},
		SetActiveTab{Tab: "pricing"},
		ToggleSection{Section: "sizes"},
		SetModalOpen{Open: true},
		ToggleFeature{Feature: FeatureSizeBreakdown},
		ResetAll{},
	}
	for _, p := range payloads {
		out := Reduce(s, act(p))
		require.NotNil(t, out, "%s", p.Type())
		assert.Equal(t, before, encode(t, s), "%s mutated its input", p.Type())
	}
}

func TestReduceSharesUntouchedSubtrees(t *testing.T) {
	s := Initial()
	out := Reduce(s, act(UpdateQuantity{Quantity: 12}))

	assert.NotSame(t, s, out)
	assert.NotSame(t, s.Selections, out.Selections)
	assert.Same(t, s.Product, out.Product)
	assert.Same(t, s.Pricing, out.Pricing)
	assert.Same(t, s.Quotes, out.Quotes)
	assert.Same(t, s.UI, out.UI)
	assert.Same(t, s.Features, out.Features)
}

func TestReduceNilStateAndEmptyAction(t *testing.T) {
	out := Reduce(nil, Action{})
	require.NotNil(t, out)
	assert.Equal(t, 1, out.Selections.Quantity)

	partial := &State{Selections: &Selections{Quantity: 7}}
	out = Reduce(partial, act(AddWarning{Warning: "w"}))
	assert.Equal(t, 7, out.Selections.Quantity)
	assert.Equal(t, []string{"w"}, out.UI.Warnings)
}

func TestReduceQuantityFloorsAtOne(t *testing.T) {
	out := Reduce(Initial(), act(UpdateQuantity{Quantity: -3}))
	assert.Equal(t, 1, out.Selections.Quantity)
}

func TestReduceSelectColor(t *testing.T) {
	single := Reduce(Initial(), act(SelectColor{Color: "Red", Colors: []string{"ignored"}}))
	assert.Equal(t, "Red", single.Selections.Color)
	assert.Equal(t, []string{"Red"}, single.Selections.Colors)

	multi := Reduce(Initial(), act(SelectColor{Color: "Red", MultiSelect: true, Colors: []string{"Red", "Blue"}}))
	assert.Equal(t, []string{"Red", "Blue"}, multi.Selections.Colors)
}

func TestEmbellishmentChangeClearsCustomOptions(t *testing.T) {
	s := Reduce(Initial(), act(UpdateCustomOptions{Options: map[string]any{"stitchCount": 8000}}))
	s = Reduce(s, act(UpdateCustomOptions{Options: map[string]any{"backing": "tearaway"}}))
	require.Equal(t, map[string]any{"stitchCount": 8000, "backing": "tearaway"}, s.Selections.CustomOptions)

	s = Reduce(s, act(SetEmbellishmentType{Kind: EmbellishmentScreenPrint}))
	assert.Equal(t, EmbellishmentScreenPrint, s.Selections.EmbellishmentType)
	assert.Empty(t, s.Selections.CustomOptions)
}

func TestResetSelectionsKeepsEmbellishment(t *testing.T) {
	s := Reduce(Initial(), act(SetEmbellishmentType{Kind: EmbellishmentEmbroidery}))
	s = Reduce(s, act(UpdateQuantity{Quantity: 72}))
	s = Reduce(s, act(UpdateLocations{Locations: []string{"left-chest"}}))

	s = Reduce(s, act(ResetSelections{}))
	assert.Equal(t, EmbellishmentEmbroidery, s.Selections.EmbellishmentType)
	assert.Equal(t, 1, s.Selections.Quantity)
	assert.Empty(t, s.Selections.Locations)
}

func TestUpdatePricingStampsActionTime(t *testing.T) {
	a := act(UpdatePricing{UnitPrice: ptr(5.25), TotalPrice: ptr(126.0)})
	out := Reduce(Initial(), a)
	assert.Equal(t, 5.25, out.Pricing.UnitPrice)
	assert.Equal(t, 126.0, out.Pricing.TotalPrice)
	assert.Equal(t, a.Timestamp, out.Pricing.LastCalculated)

	again := Reduce(Initial(), a)
	assert.Equal(t, encode(t, out), encode(t, again))
}

func TestSaveQuoteUpserts(t *testing.T) {
	s := Reduce(Initial(), act(SaveQuote{Quote: Quote{ID: "a", Name: "A"}}))
	s = Reduce(s, act(SaveQuote{Quote: Quote{ID: "b", Name: "B"}}))
	s = Reduce(s, act(SaveQuote{Quote: Quote{ID: "a", Name: "A2"}}))

	require.Len(t, s.Quotes.Saved, 2)
	assert.Equal(t, "A2", s.Quotes.Saved[0].Name)
	require.NotNil(t, s.Quotes.Current)
	assert.Equal(t, "a", s.Quotes.Current.ID)

	s = Reduce(s, act(DeleteQuote{QuoteID: "a"}))
	require.Len(t, s.Quotes.Saved, 1)
	assert.Equal(t, "b", s.Quotes.Saved[0].ID)
}

func TestToggleSectionAndFeature(t *testing.T) {
	s := Reduce(Initial(), act(ToggleSection{Section: "sizes"}))
	assert.Equal(t, []string{"sizes"}, s.UI.ExpandedSections)
	s = Reduce(s, act(ToggleSection{Section: "sizes"}))
	assert.Empty(t, s.UI.ExpandedSections)

	s = Reduce(s, act(ToggleFeature{Feature: FeatureMultiColorSelection}))
	assert.True(t, s.Features.MultiColorSelection)

	same := Reduce(s, act(ToggleFeature{Feature: "teleport"}))
	assert.Same(t, s, same)
}

func TestResetAllReturnsInitial(t *testing.T) {
	s := Reduce(Initial(), act(UpdateQuantity{Quantity: 30}))
	s = Reduce(s, act(ResetAll{}))
	assert.Equal(t, encode(t, Initial()), encode(t, s))
}

func TestDecodeAction(t *testing.T) {
	p, err := DecodeAction("UPDATE_QUANTITY", []byte(`{"quantity":24}`))
	require.NoError(t, err)
	assert.Equal(t, UpdateQuantity{Quantity: 24}, p)

	p, err = DecodeAction("UPDATE_CUSTOM_OPTIONS", []byte(`{"stitchCount":5000}`))
	require.NoError(t, err)
	assert.Equal(t, UpdateCustomOptions{Options: map[string]any{"stitchCount": float64(5000)}}, p)

	p, err = DecodeAction("SET_EMBELLISHMENT_TYPE", []byte(`{"type":"dtg"}`))
	require.NoError(t, err)
	assert.Equal(t, SetEmbellishmentType{Kind: EmbellishmentDTG}, p)
	assert.Equal(t, EmbellishmentDTG, Reduce(Initial(), act(p)).Selections.EmbellishmentType)

	p, err = DecodeAction("CLEAR_ERRORS", nil)
	require.NoError(t, err)
	assert.Equal(t, ClearErrors{}, p)

	_, err = DecodeAction("LAUNCH_ROCKET", nil)
	assert.True(t, errors.Is(err, ErrUnknownAction))

	_, err = DecodeAction("UPDATE_SIZES", []byte(`{"sizes":`))
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
