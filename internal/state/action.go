package state

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ActionType is the wire name of an action.
type ActionType string

const (
	TypeSetProduct           ActionType = "SET_PRODUCT"
	TypeUpdateQuantity       ActionType = "UPDATE_QUANTITY"
	TypeSelectColor          ActionType = "SELECT_COLOR"
	TypeUpdateSizes          ActionType = "UPDATE_SIZES"
	TypeSetEmbellishmentType ActionType = "SET_EMBELLISHMENT_TYPE"
	TypeUpdateLocations      ActionType = "UPDATE_LOCATIONS"
	TypeUpdateCustomOptions  ActionType = "UPDATE_CUSTOM_OPTIONS"
	TypeResetSelections      ActionType = "RESET_SELECTIONS"
	TypeUpdatePricing        ActionType = "UPDATE_PRICING"
	TypeSetPricingMatrix     ActionType = "SET_PRICING_MATRIX"
	TypeSetCurrentQuote      ActionType = "SET_CURRENT_QUOTE"
	TypeSaveQuote            ActionType = "SAVE_QUOTE"
	TypeDeleteQuote          ActionType = "DELETE_QUOTE"
	TypeSetLoading           ActionType = "SET_LOADING"
	TypeAddError             ActionType = "ADD_ERROR"
	TypeClearErrors          ActionType = "CLEAR_ERRORS"
	TypeAddWarning           ActionType = "ADD_WARNING"
	TypeClearWarnings        ActionType = "CLEAR_WARNINGS"
	TypeSetActiveTab         ActionType = "SET_ACTIVE_TAB"
	TypeToggleSection        ActionType = "TOGGLE_SECTION"
	TypeSetModalOpen         ActionType = "SET_MODAL_OPEN"
	TypeToggleFeature        ActionType = "TOGGLE_FEATURE"
	TypeResetAll             ActionType = "RESET_ALL"

	// Synthetic types used to tag notifications that bypass the reducer.
	TypeUndo   ActionType = "UNDO"
	TypeRedo   ActionType = "REDO"
	TypeImport ActionType = "IMPORT"
)

// ErrUnknownAction is returned when decoding an action type the reducer does
// not know.
var ErrUnknownAction = errors.New("state: unknown action type")

// Payload is one variant of the closed set of actions. The unexported reduce
// method keeps the set sealed: every variant must carry its own reduction.
type Payload interface {
	Type() ActionType
	reduce(s *State, at time.Time) *State
}

// Action is a payload stamped by the store at dispatch time.
type Action struct {
	Payload   Payload
	Timestamp time.Time
	Seq       uint64
}

// Type returns the payload's action type, or "" for an empty action.
func (a Action) Type() ActionType {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Type()
}

// SetProduct merges the non-nil fields into the product.
type SetProduct struct {
	ID          *string        `json:"id,omitempty"`
	StyleNumber *string        `json:"styleNumber,omitempty"`
	Name        *string        `json:"name,omitempty"`
	Category    *string        `json:"category,omitempty"`
	BasePrice   *float64       `json:"basePrice,omitempty"`
	Colors      []string       `json:"colors,omitempty"`
	Sizes       []string       `json:"sizes,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// UpdateQuantity sets the order quantity.
type UpdateQuantity struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// SelectColor picks a garment color; Colors is used only when MultiSelect is set.
type SelectColor struct {
	Color       string   `json:"color"`
	MultiSelect bool     `json:"multiSelect"`
	Colors      []string `json:"colors"`
}

// UpdateSizes replaces the per-size quantity breakdown.
type UpdateSizes struct {
	Sizes map[string]int `json:"sizes" validate:"required,dive,gte=0"`
}

// SetEmbellishmentType switches decoration method.
type SetEmbellishmentType struct {
	Kind Embellishment `json:"type"`
}

// UpdateLocations replaces the print/stitch locations.
type UpdateLocations struct {
	Locations []string `json:"locations"`
}

// UpdateCustomOptions merges method-specific options into the selections.
type UpdateCustomOptions struct {
	Options map[string]any `json:"options" validate:"required"`
}

// ResetSelections clears selections except the embellishment type.
type ResetSelections struct{}

// UpdatePricing merges calculator output into the pricing sub-tree.
type UpdatePricing struct {
	UnitPrice  *float64       `json:"unitPrice,omitempty"`
	TotalPrice *float64       `json:"totalPrice,omitempty"`
	SetupFees  *float64       `json:"setupFees,omitempty"`
	Discount   *float64       `json:"discount,omitempty"`
	Breakdown  map[string]any `json:"breakdown,omitempty"`
}

// SetPricingMatrix stores the matrix fetched for the product category.
type SetPricingMatrix struct {
	Matrix map[string]any `json:"matrix"`
}

// SetCurrentQuote selects the quote being edited; nil clears it.
type SetCurrentQuote struct {
	Quote *Quote `json:"quote"`
}

// SaveQuote upserts a quote by id and makes it current.
type SaveQuote struct {
	Quote Quote `json:"quote"`
}

// DeleteQuote removes a saved quote by id.
type DeleteQuote struct {
	QuoteID string `json:"quoteId" validate:"required"`
}

// SetLoading toggles the loading indicator.
type SetLoading struct {
	Loading bool   `json:"loading"`
	Message string `json:"message"`
}

// AddError appends a user-facing error message.
type AddError struct {
	Error string `json:"error"`
}

// ClearErrors empties the error list.
type ClearErrors struct{}

// AddWarning appends a user-facing warning message.
type AddWarning struct {
	Warning string `json:"warning"`
}

// ClearWarnings empties the warning list.
type ClearWarnings struct{}

// SetActiveTab records the focused tab.
type SetActiveTab struct {
	Tab string `json:"tab"`
}

// ToggleSection expands or collapses a named section.
type ToggleSection struct {
	Section string `json:"section" validate:"required"`
}

// SetModalOpen records whether a modal is showing.
type SetModalOpen struct {
	Open bool `json:"open"`
}

// ToggleFeature flips a named feature flag.
type ToggleFeature struct {
	Feature string `json:"feature" validate:"required,oneof=multiColorSelection sizeBreakdown quickQuote autoSave priceOptimization"`
}

// ResetAll returns the store to the initial state.
type ResetAll struct{}

// Undo tags notifications emitted by Store.Undo.
type Undo struct{}

// Redo tags notifications emitted by Store.Redo.
type Redo struct{}

// Import tags notifications emitted by Store.Import.
type Import struct{}

func (SetProduct) Type() ActionType { return TypeSetProduct }
func (UpdateQuantity) Type() ActionType { return TypeUpdateQuantity }
func (SelectColor) Type() ActionType { return TypeSelectColor }
func (UpdateSizes) Type() ActionType { return TypeUpdateSizes }
func (SetEmbellishmentType) Type() ActionType { return TypeSetEmbellishmentType }
func (UpdateLocations) Type() ActionType { return TypeUpdateLocations }
func (UpdateCustomOptions) Type() ActionType { return TypeUpdateCustomOptions }
func (ResetSelections) Type() ActionType { return TypeResetSelections }
func (UpdatePricing) Type() ActionType { return TypeUpdatePricing }
func (SetPricingMatrix) Type() ActionType { return TypeSetPricingMatrix }
func (SetCurrentQuote) Type() ActionType { return TypeSetCurrentQuote }
func (SaveQuote) Type() ActionType { return TypeSaveQuote }
func (DeleteQuote) Type() ActionType { return TypeDeleteQuote }
func (SetLoading) Type() ActionType { return TypeSetLoading }
func (AddError) Type() ActionType { return TypeAddError }
func (ClearErrors) Type() ActionType { return TypeClearErrors }
func (AddWarning) Type() ActionType { return TypeAddWarning }
func (ClearWarnings) Type() ActionType { return TypeClearWarnings }
func (SetActiveTab) Type() ActionType { return TypeSetActiveTab }
func (ToggleSection) Type() ActionType { return TypeToggleSection }
func (SetModalOpen) Type() ActionType { return TypeSetModalOpen }
func (ToggleFeature) Type() ActionType { return TypeToggleFeature }
func (ResetAll) Type() ActionType { return TypeResetAll }
func (Undo) Type() ActionType { return TypeUndo }
func (Redo) Type() ActionType { return TypeRedo }
func (Import) Type() ActionType { return TypeImport }

// DecodeAction builds a payload from its wire type and JSON body. An empty
// body decodes to the zero payload. UPDATE_CUSTOM_OPTIONS takes the options
// object itself as its body.
func DecodeAction(actionType string, body []byte) (Payload, error) {
	var p Payload
	switch ActionType(actionType) {
	case TypeSetProduct:
		p = &SetProduct{}
	case TypeUpdateQuantity:
		p = &UpdateQuantity{}
	case TypeSelectColor:
		p = &SelectColor{}
	case TypeUpdateSizes:
		p = &UpdateSizes{}
	case TypeSetEmbellishmentType:
		p = &SetEmbellishmentType{}
	case TypeUpdateLocations:
		p = &UpdateLocations{}
	case TypeUpdateCustomOptions:
		var opts map[string]any
		if len(body) > 0 {
			if err := json.Unmarshal(body, &opts); err != nil {
				return nil, fmt.Errorf("decode %s: %w", actionType, err)
			}
		}
		return UpdateCustomOptions{Options: opts}, nil
	case TypeResetSelections:
		return ResetSelections{}, nil
	case TypeUpdatePricing:
		p = &UpdatePricing{}
	case TypeSetPricingMatrix:
		p = &SetPricingMatrix{}
	case TypeSetCurrentQuote:
		p = &SetCurrentQuote{}
	case TypeSaveQuote:
		p = &SaveQuote{}
	case TypeDeleteQuote:
		p = &DeleteQuote{}
	case TypeSetLoading:
		p = &SetLoading{}
	case TypeAddError:
		p = &AddError{}
	case TypeClearErrors:
		return ClearErrors{}, nil
	case TypeAddWarning:
		p = &AddWarning{}
	case TypeClearWarnings:
		return ClearWarnings{}, nil
	case TypeSetActiveTab:
		p = &SetActiveTab{}
	case TypeToggleSection:
		p = &ToggleSection{}
	case TypeSetModalOpen:
		p = &SetModalOpen{}
	case TypeToggleFeature:
		p = &ToggleFeature{}
	case TypeResetAll:
		return ResetAll{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, actionType)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", actionType, err)
		}
	}
	return deref(p), nil
}

// deref turns the pointer used for decoding back into the value variant.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *SetProduct:
		return *v
	case *UpdateQuantity:
		return *v
	case *SelectColor:
		return *v
	case *UpdateSizes:
		return *v
	case *SetEmbellishmentType:
		return *v
	case *UpdateLocations:
		return *v
	case *UpdatePricing:
		return *v
	case *SetPricingMatrix:
		return *v
	case *SetCurrentQuote:
		return *v
	case *SaveQuote:
		return *v
	case *DeleteQuote:
		return *v
	case *SetLoading:
		return *v
	case *AddError:
		return *v
	case *AddWarning:
		return *v
	case *SetActiveTab:
		return *v
	case *ToggleSection:
		return *v
	case *SetModalOpen:
		return *v
	case *ToggleFeature:
		return *v
	default:
		return p
	}
}
