/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model from the wire contract:
  - Decimals travel as exact strings so no client float ever touches money;
    *_display fields carry the two-place rendering
  - Dates travel as YYYY-MM-DD
  - Patch fields are pointers so "absent" differs from "empty"

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Parsing happens here (toDraft / toPatch) and yields ledger.ValidationError,
  so a malformed number is reported against the same field name the
  ledger itself would use.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// TransactionDTO represents a transaction in API responses.
type TransactionDTO struct {
	ID              string `json:"id"`
	TransactionDate string `json:"transaction_date"`
	TransactionType string `json:"transaction_type"`
	Counterparty    string `json:"counterparty_name"`
	Material        string `json:"material_name"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	UnitLabel       string `json:"unit_label"`
	TotalValue      string `json:"total_value"`
	OwnerID         string `json:"owner_id"`

	// Rounded to two places for display. Never send these back.
	UnitPriceDisplay  string `json:"unit_price_display"`
	TotalValueDisplay string `json:"total_value_display"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// BalanceDTO represents one counterparty balance.
type BalanceDTO struct {
	Counterparty     string `json:"counterparty_name"`
	Balance          string `json:"balance"`
	Magnitude        string `json:"magnitude"`
	Standing         string `json:"standing"`
	TransactionCount int    `json:"transaction_count"`
}

// ViewDTO is the refreshed list and balances after a mutation.
type ViewDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Balances     []BalanceDTO     `json:"balances"`
	Generation   uint64           `json:"generation"`
	Stale        bool             `json:"stale"`
}

// MutationResponse is returned by create and update.
type MutationResponse struct {
	Transaction TransactionDTO `json:"transaction"`
	View        ViewDTO        `json:"view"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateTransactionRequest is the body of POST /api/transactions.
// total_value is optional; when present the unit price is derived from it.
type CreateTransactionRequest struct {
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	Counterparty    string  `json:"counterparty_name"`
	Material        string  `json:"material_name"`
	Quantity        string  `json:"quantity"`
	UnitPrice       string  `json:"unit_price"`
	TotalValue      *string `json:"total_value,omitempty"`
}

// UpdateTransactionRequest is the body of PATCH /api/transactions/{id}.
type UpdateTransactionRequest struct {
	ID              *string `json:"id,omitempty"`
	OwnerID         *string `json:"owner_id,omitempty"`
	TransactionDate *string `json:"transaction_date,omitempty"`
	TransactionType *string `json:"transaction_type,omitempty"`
	Counterparty    *string `json:"counterparty_name,omitempty"`
	Material        *string `json:"material_name,omitempty"`
	Quantity        *string `json:"quantity,omitempty"`
	UnitPrice       *string `json:"unit_price,omitempty"`
	TotalValue      *string `json:"total_value,omitempty"`
}

// ReconcileRequest carries a form's current numeric fields and which one
// the user just edited. Empty strings count as zero.
type ReconcileRequest struct {
	Changed    string `json:"changed"`
	Quantity   string `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalValue string `json:"total_value"`
}

// ReconcileResponse echoes the reconciled numeric fields, unrounded.
type ReconcileResponse struct {
	Quantity   string `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalValue string `json:"total_value"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:              string(tx.ID),
		TransactionDate: tx.Date.String(),
		TransactionType: string(tx.Type),
		Counterparty:    tx.Counterparty,
		Material:        tx.Material,
		Quantity:        tx.Quantity.String(),
		UnitPrice:       tx.UnitPrice.String(),
		UnitLabel:       unitLabel(tx.Material),
		TotalValue:      tx.TotalValue.String(),
		OwnerID:         string(tx.OwnerID),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       tx.UpdatedAt.Format(time.RFC3339),

		UnitPriceDisplay:  tx.UnitPrice.StringFixed(2),
		TotalValueDisplay: tx.TotalValue.StringFixed(2),
	}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toBalanceDTOs(bs []ledger.PharmacyBalance) []BalanceDTO {
	dtos := make([]BalanceDTO, len(bs))
	for i, b := range bs {
		dtos[i] = BalanceDTO{
			Counterparty:     b.Counterparty,
			Balance:          b.Display(),
			Magnitude:        b.Magnitude().StringFixed(2),
			Standing:         string(b.Standing()),
			TransactionCount: b.TransactionCount,
		}
	}
	return dtos
}

func toViewDTO(v ledger.View) ViewDTO {
	return ViewDTO{
		Transactions: toTransactionDTOs(v.Transactions),
		Balances:     toBalanceDTOs(v.Balances),
		Generation:   v.Generation,
		Stale:        v.Stale,
	}
}

// unitLabel is presentation only: materials sold by the gram read "gr".
func unitLabel(material string) string {
	if strings.Contains(strings.ToLower(material), "grama") {
		return "gr"
	}
	return "un"
}

func (req CreateTransactionRequest) toDraft() (ledger.Draft, error) {
	var (
		d   ledger.Draft
		err error
	)
	if d.Date, err = ledger.ParseDate(req.TransactionDate); err != nil {
		return d, err
	}
	if d.Type, err = ledger.ParseTransactionType(req.TransactionType); err != nil {
		return d, err
	}
	d.Counterparty = req.Counterparty
	d.Material = req.Material
	if d.Quantity, err = ledger.ParseDecimal(ledger.FieldQuantity, req.Quantity); err != nil {
		return d, err
	}
	if req.TotalValue != nil {
		total, err := ledger.ParseDecimal(ledger.FieldTotalValue, *req.TotalValue)
		if err != nil {
			return d, err
		}
		d.TotalValue = decimal.NewNullDecimal(total)
	}
	if req.UnitPrice != "" || req.TotalValue == nil {
		if d.UnitPrice, err = ledger.ParseDecimal(ledger.FieldUnitPrice, req.UnitPrice); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (req UpdateTransactionRequest) toPatch() (ledger.Patch, error) {
	var p ledger.Patch
	if req.ID != nil {
		id := ledger.TransactionID(*req.ID)
		p.ID = &id
	}
	if req.OwnerID != nil {
		owner := ledger.ActorID(*req.OwnerID)
		p.OwnerID = &owner
	}
	if req.TransactionDate != nil {
		d, err := ledger.ParseDate(*req.TransactionDate)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if req.TransactionType != nil {
		t, err := ledger.ParseTransactionType(*req.TransactionType)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	p.Counterparty = req.Counterparty
	p.Material = req.Material

	for _, f := range []struct {
		field ledger.Field
		raw   *string
		dst   *decimal.NullDecimal
	}{
		{ledger.FieldQuantity, req.Quantity, &p.Quantity},
		{ledger.FieldUnitPrice, req.UnitPrice, &p.UnitPrice},
		{ledger.FieldTotalValue, req.TotalValue, &p.TotalValue},
	} {
		if f.raw == nil {
			continue
		}
		v, err := ledger.ParseDecimal(f.field, *f.raw)
		if err != nil {
			return p, err
		}
		*f.dst = decimal.NewNullDecimal(v)
	}
	return p, nil
}

func (req ReconcileRequest) toDraft() (ledger.Draft, ledger.Field, error) {
	var d ledger.Draft
	changed := ledger.Field(req.Changed)
	switch changed {
	case ledger.FieldQuantity, ledger.FieldUnitPrice, ledger.FieldTotalValue:
	default:
		return d, "", &ledger.ValidationError{Field: "changed", Reason: "must be quantity, unit_price or total_value"}
	}

	parse := func(f ledger.Field, s string) (decimal.Decimal, error) {
		if strings.TrimSpace(s) == "" {
			return decimal.Zero, nil
		}
		return ledger.ParseDecimal(f, s)
	}
	var err error
	if d.Quantity, err = parse(ledger.FieldQuantity, req.Quantity); err != nil {
		return d, "", err
	}
	if d.UnitPrice, err = parse(ledger.FieldUnitPrice, req.UnitPrice); err != nil {
		return d, "", err
	}
	total, err := parse(ledger.FieldTotalValue, req.TotalValue)
	if err != nil {
		return d, "", err
	}
	d.TotalValue = decimal.NewNullDecimal(total)
	return d, changed, nil
}
