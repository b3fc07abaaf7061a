package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION - Runs before any store call
// =============================================================================

// rules carries the date window for one operation. today is taken from the
// service clock when the operation starts.
type rules struct {
	minDate Date
	today   Date
}

// normalizeDraft trims, validates and derives the monetary fields of a
// create draft. The returned Transaction has no ID, owner or timestamps.
func (r rules) normalizeDraft(d Draft) (Transaction, error) {
	d.Counterparty = strings.TrimSpace(d.Counterparty)
	d.Material = strings.TrimSpace(d.Material)

	if err := r.validateFields(d); err != nil {
		return Transaction{}, err
	}
	if d.TotalValue.Valid {
		d = Reconcile(d, FieldTotalValue)
	} else {
		d = Reconcile(d, FieldQuantity)
	}
	return Transaction{
		Date:         d.Date,
		Type:         d.Type,
		Counterparty: d.Counterparty,
		Material:     d.Material,
		Quantity:     d.Quantity,
		UnitPrice:    d.UnitPrice,
		TotalValue:   d.TotalValue.Decimal,
	}, nil
}

// applyPatch merges p onto cur and re-runs the create rules over the result.
// An explicit total wins over a quantity or price edit in the same patch,
// matching how the edit form saves.
func (r rules) applyPatch(cur Transaction, p Patch) (Transaction, error) {
	if p.ID != nil && *p.ID != cur.ID {
		return Transaction{}, &ValidationError{Field: FieldID, Reason: "id cannot be changed"}
	}
	if p.OwnerID != nil && *p.OwnerID != cur.OwnerID {
		return Transaction{}, &ValidationError{Field: FieldOwner, Reason: "owner cannot be changed"}
	}

	d := draftOf(cur)
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Counterparty != nil {
		d.Counterparty = strings.TrimSpace(*p.Counterparty)
	}
	if p.Material != nil {
		d.Material = strings.TrimSpace(*p.Material)
	}
	if p.Quantity.Valid {
		d.Quantity = p.Quantity.Decimal
	}
	if p.UnitPrice.Valid {
		d.UnitPrice = p.UnitPrice.Decimal
	}
	if p.TotalValue.Valid {
		d.TotalValue = p.TotalValue
	}

	if err := r.validateFields(d); err != nil {
		return Transaction{}, err
	}

	switch {
	case p.TotalValue.Valid:
		d = Reconcile(d, FieldTotalValue)
	case p.Quantity.Valid:
		d = Reconcile(d, FieldQuantity)
	case p.UnitPrice.Valid:
		d = Reconcile(d, FieldUnitPrice)
	}

	next := cur
	next.Date = d.Date
	next.Type = d.Type
	next.Counterparty = d.Counterparty
	next.Material = d.Material
	next.Quantity = d.Quantity
	next.UnitPrice = d.UnitPrice
	next.TotalValue = d.TotalValue.Decimal
	return next, nil
}

// validatePatch checks each touched field on its own so that bad input is
// rejected before the current record is even fetched. Cross-field rules
// run again in applyPatch once the record is known.
func (r rules) validatePatch(p Patch) error {
	if p.Date != nil {
		switch {
		case p.Date.IsZero():
			return &ValidationError{Field: FieldDate, Reason: "is required"}
		case p.Date.Before(r.minDate):
			return &ValidationError{Field: FieldDate, Reason: "must not be before " + r.minDate.String()}
		case p.Date.After(r.today):
			return &ValidationError{Field: FieldDate, Reason: "must not be in the future"}
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return &ValidationError{Field: FieldType, Reason: "must be purchase or sale"}
	}
	if p.Counterparty != nil && strings.TrimSpace(*p.Counterparty) == "" {
		return &ValidationError{Field: FieldCounterparty, Reason: "is required"}
	}
	if p.Material != nil && strings.TrimSpace(*p.Material) == "" {
		return &ValidationError{Field: FieldMaterial, Reason: "is required"}
	}
	if p.Quantity.Valid && !p.Quantity.Decimal.IsPositive() {
		return &ValidationError{Field: FieldQuantity, Reason: "must be greater than zero"}
	}
	if p.UnitPrice.Valid && p.UnitPrice.Decimal.IsNegative() {
		return &ValidationError{Field: FieldUnitPrice, Reason: "must not be negative"}
	}
	if p.TotalValue.Valid && p.TotalValue.Decimal.IsNegative() {
		return &ValidationError{Field: FieldTotalValue, Reason: "must not be negative"}
	}
	return nil
}

func (r rules) validateFields(d Draft) error {
	switch {
	case d.Date.IsZero():
		return &ValidationError{Field: FieldDate, Reason: "is required"}
	case d.Date.Before(r.minDate):
		return &ValidationError{Field: FieldDate, Reason: "must not be before " + r.minDate.String()}
	case d.Date.After(r.today):
		return &ValidationError{Field: FieldDate, Reason: "must not be in the future"}
	case !d.Type.Valid():
		return &ValidationError{Field: FieldType, Reason: "must be purchase or sale"}
	case d.Counterparty == "":
		return &ValidationError{Field: FieldCounterparty, Reason: "is required"}
	case d.Material == "":
		return &ValidationError{Field: FieldMaterial, Reason: "is required"}
	case !d.Quantity.IsPositive():
		return &ValidationError{Field: FieldQuantity, Reason: "must be greater than zero"}
	case d.UnitPrice.IsNegative():
		return &ValidationError{Field: FieldUnitPrice, Reason: "must not be negative"}
	case d.TotalValue.Valid && d.TotalValue.Decimal.IsNegative():
		return &ValidationError{Field: FieldTotalValue, Reason: "must not be negative"}
	}
	return nil
}

func draftOf(t Transaction) Draft {
	return Draft{
		Date:         t.Date,
		Type:         t.Type,
		Counterparty: t.Counterparty,
		Material:     t.Material,
		Quantity:     t.Quantity,
		UnitPrice:    t.UnitPrice,
		TotalValue:   decimal.NewNullDecimal(t.TotalValue),
	}
}
