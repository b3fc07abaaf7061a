package ledger

import "github.com/shopspring/decimal"

// Field names an input field of a transaction. Used by Reconcile and to
// point validation errors at the widget that needs correcting.
type Field string

const (
	FieldDate         Field = "transaction_date"
	FieldType         Field = "transaction_type"
	FieldCounterparty Field = "counterparty_name"
	FieldMaterial     Field = "material_name"
	FieldQuantity     Field = "quantity"
	FieldUnitPrice    Field = "unit_price"
	FieldTotalValue   Field = "total_value"
	FieldID           Field = "id"
	FieldOwner        Field = "owner_id"
	FieldSearch       Field = "search"
)

// Reconcile returns a copy of d with the dependent monetary field brought
// back in line after the changed field was edited:
//
//	quantity or unit_price edited -> total_value = quantity * unit_price
//	total_value edited            -> unit_price  = total_value / quantity
//
// When quantity is zero a total edit leaves unit_price unchanged.
// Other fields are returned as-is.
//
// A derived unit_price is cut to 16 decimal places (decimal.DivisionPrecision),
// so after a total edit quantity*unit_price may differ from total_value in
// the last places (quantity 3, total 10). total_value is the figure that
// counts toward balances.
func Reconcile(d Draft, changed Field) Draft {
	switch changed {
	case FieldQuantity, FieldUnitPrice:
		d.TotalValue = decimal.NewNullDecimal(d.Quantity.Mul(d.UnitPrice))
	case FieldTotalValue:
		if d.TotalValue.Valid && !d.Quantity.IsZero() {
			d.UnitPrice = d.TotalValue.Decimal.Div(d.Quantity)
		}
	}
	return d
}
