/*
Package ledger tracks raw-material exchanges between the operator and the
pharmacies it trades with, and derives who owes whom from that history.

PURPOSE:
  This package holds the whole ledger core: the transaction record, the
  quantity/price/total reconciliation rule, input validation, the balance
  aggregator, search over the materialized list, and the Service that
  orchestrates writes against an external Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: one purchase or sale of a material with one counterparty
  - TransactionType: purchase (operator owes) or sale (counterparty owes)
  - Draft / Patch: unvalidated input for create / update
  - Identifiers: type-safe transaction and actor IDs

DESIGN PRINCIPLES:
  1. Precision: quantities and money use decimal.Decimal, never float64
  2. Derived state: balances are recomputed from the live set, never stored
  3. Explicit actor: the authenticated actor is a parameter, not ambient state

USAGE:
  svc := ledger.NewService(store.NewMemory(), logger)
  tx, view, err := svc.Create(ctx, "user-1", ledger.Draft{
      Date:         ledger.NewDate(2025, time.March, 10),
      Type:         ledger.Purchase,
      Counterparty: "Alpha",
      Material:     "Amoxicillin",
      Quantity:     decimal.NewFromInt(10),
      UnitPrice:    decimal.RequireFromString("2.50"),
  })

SEE ALSO:
  - reconcile.go: bidirectional quantity/price/total rule
  - balance.go: per-counterparty aggregation
  - service.go: create/update/delete/list orchestration
*/
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TransactionID string

// ActorID identifies the authenticated user that owns a record.
type ActorID string

// =============================================================================
// TRANSACTION TYPE
// =============================================================================

type TransactionType string

const (
	Purchase TransactionType = "purchase" // operator owes the counterparty
	Sale     TransactionType = "sale"     // counterparty owes the operator
)

// ParseTransactionType accepts the canonical names and the legacy
// Portuguese ones ("compra", "venda") still found in older exports.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "compra":
		return Purchase, nil
	case "sale", "venda":
		return Sale, nil
	}
	return "", &ValidationError{Field: FieldType, Reason: fmt.Sprintf("unknown transaction type %q", s)}
}

func (t TransactionType) Valid() bool { return t == Purchase || t == Sale }

// =============================================================================
// TRANSACTION - One exchange with one counterparty
// =============================================================================

type Transaction struct {
	ID           TransactionID
	Date         Date
	Type         TransactionType
	Counterparty string
	Material     string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TotalValue   decimal.Decimal

	// Set once at creation, never mutated.
	OwnerID ActorID

	// Maintained by the store.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignedValue is the transaction's contribution to its counterparty balance:
// positive for a sale, negative for a purchase.
func (t Transaction) SignedValue() decimal.Decimal {
	if t.Type == Purchase {
		return t.TotalValue.Neg()
	}
	return t.TotalValue
}

// =============================================================================
// DRAFT / PATCH - Unvalidated input
// =============================================================================

// Draft is the input to Create. TotalValue is optional: when it is set the
// caller entered the total directly and UnitPrice is derived from it.
type Draft struct {
	Date         Date
	Type         TransactionType
	Counterparty string
	Material     string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TotalValue   decimal.NullDecimal
}

// Patch is the input to Update. Nil / invalid fields are untouched.
//
// ID and OwnerID exist only so that an attempt to change them can be
// rejected; they must be nil or equal to the stored values.
type Patch struct {
	Date         *Date
	Type         *TransactionType
	Counterparty *string
	Material     *string
	Quantity     decimal.NullDecimal
	UnitPrice    decimal.NullDecimal
	TotalValue   decimal.NullDecimal

	ID      *TransactionID
	OwnerID *ActorID
}

// Touched reports whether the patch changes anything at all.
func (p Patch) Touched() bool {
	return p.Date != nil || p.Type != nil || p.Counterparty != nil || p.Material != nil ||
		p.Quantity.Valid || p.UnitPrice.Valid || p.TotalValue.Valid
}

// Bounds on numeric input. MaxFractionDigits matches the precision of a
// unit price derived from a total, so a listed value can be sent back as is.
const (
	MaxIntegerDigits  = 18
	MaxFractionDigits = 16

	maxNumberLen = 64
)

var maxMagnitude = decimal.New(1, MaxIntegerDigits)

// ParseDecimal parses user input for a numeric field. Anything that is not a
// finite decimal (including "NaN" and "Inf") is a validation error, and so
// is a value with more than MaxIntegerDigits integer digits or
// MaxFractionDigits fractional digits.
func ParseDecimal(field Field, s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if len(raw) > maxNumberLen {
		return decimal.Zero, &ValidationError{Field: field, Reason: "number is too long"}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", s)}
	}

	// The exponent is checked first: "1e20000000" is a short string whose
	// expansion is not.
	if exp := d.Exponent(); exp > MaxIntegerDigits || exp < -(maxNumberLen+MaxFractionDigits) {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is out of range", s)}
	}
	if d.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("must have at most %d integer digits", MaxIntegerDigits)}
	}
	if !d.Equal(d.Truncate(MaxFractionDigits)) {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("must have at most %d decimal places", MaxFractionDigits)}
	}
	return d, nil
}
