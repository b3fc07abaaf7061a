package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		draft     ledger.Draft
		changed   ledger.Field
		wantPrice string
		wantTotal string
	}{
		{
			name:      "quantity edit recomputes total",
			draft:     ledger.Draft{Quantity: dec("10"), UnitPrice: dec("2.50")},
			changed:   ledger.FieldQuantity,
			wantPrice: "2.50",
			wantTotal: "25.00",
		},
		{
			name:      "unit price edit recomputes total",
			draft:     ledger.Draft{Quantity: dec("4"), UnitPrice: dec("1.25"), TotalValue: decimal.NewNullDecimal(dec("99"))},
			changed:   ledger.FieldUnitPrice,
			wantPrice: "1.25",
			wantTotal: "5",
		},
		{
			name:      "total edit recomputes unit price",
			draft:     ledger.Draft{Quantity: dec("10"), UnitPrice: dec("2.50"), TotalValue: decimal.NewNullDecimal(dec("30"))},
			changed:   ledger.FieldTotalValue,
			wantPrice: "3",
			wantTotal: "30",
		},
		{
			name:      "fractional quantity",
			draft:     ledger.Draft{Quantity: dec("2.5"), UnitPrice: dec("0.40")},
			changed:   ledger.FieldQuantity,
			wantPrice: "0.40",
			wantTotal: "1.00",
		},
		{
			name:      "zero quantity leaves unit price alone",
			draft:     ledger.Draft{Quantity: decimal.Zero, UnitPrice: dec("7"), TotalValue: decimal.NewNullDecimal(dec("30"))},
			changed:   ledger.FieldTotalValue,
			wantPrice: "7",
			wantTotal: "30",
		},
		{
			name:      "unrelated field changes nothing",
			draft:     ledger.Draft{Quantity: dec("3"), UnitPrice: dec("2"), TotalValue: decimal.NewNullDecimal(dec("1"))},
			changed:   ledger.FieldCounterparty,
			wantPrice: "2",
			wantTotal: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.Reconcile(tt.draft, tt.changed)
			assertDecimal(t, tt.wantPrice, got.UnitPrice)
			assert.True(t, got.TotalValue.Valid)
			assertDecimal(t, tt.wantTotal, got.TotalValue.Decimal)
			assertDecimal(t, tt.draft.Quantity.String(), got.Quantity)
		})
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	d := ledger.Draft{Quantity: dec("10"), UnitPrice: dec("2.50")}
	_ = ledger.Reconcile(d, ledger.FieldQuantity)
	assert.False(t, d.TotalValue.Valid)
}

func TestReconcile_RepeatingDivisionKeepsPrecision(t *testing.T) {
	d := ledger.Draft{Quantity: dec("3"), TotalValue: decimal.NewNullDecimal(dec("10"))}
	got := ledger.Reconcile(d, ledger.FieldTotalValue)
	assert.Equal(t, "3.33", got.UnitPrice.StringFixed(2))

	// The total is kept as entered; the derived price is cut at 16 places.
	assert.Equal(t, "3.3333333333333333", got.UnitPrice.String())
	assertDecimal(t, "10", got.TotalValue.Decimal)
	assertDecimal(t, "9.9999999999999999", got.Quantity.Mul(got.UnitPrice))
}
