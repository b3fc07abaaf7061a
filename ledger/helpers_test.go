package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func march(day int) ledger.Date {
	return ledger.NewDate(2025, time.March, day)
}

// fixedNow is 2025-06-30 12:00 UTC, well after every fixture date.
func fixedNow() time.Time {
	return time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
}

func tx(typ ledger.TransactionType, counterparty, total string) ledger.Transaction {
	return ledger.Transaction{
		Date:         march(10),
		Type:         typ,
		Counterparty: counterparty,
		Material:     "Amoxicilina",
		Quantity:     dec("1"),
		UnitPrice:    dec(total),
		TotalValue:   dec(total),
		OwnerID:      "user-1",
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("expected %s, got %s", want, got)
	}
}
