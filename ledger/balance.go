/*
balance.go - Per-counterparty balance aggregation

PURPOSE:
  Answers "who owes whom, and by how much?" for every pharmacy the
  operator has traded with. Balances are derived from the transaction
  set every time; nothing here is persisted.

SIGN CONVENTION:
  sale     -> +total_value (the pharmacy owes the operator)
  purchase -> -total_value (the operator owes the pharmacy)

  balance > 0  owed to operator
  balance < 0  owed by operator
  balance == 0 settled (still listed while it has transactions)

EXAMPLE:
  Alpha: purchase 100.00, sale 40.00
  balance = -100.00 + 40.00 = -60.00, count = 2 (operator owes Alpha 60.00)

PRECISION:
  Sums are exact decimal additions. Display() rounds to two places
  without touching the stored value.

SEE ALSO:
  - service.go: Refresh feeds the live set into Aggregate
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PHARMACY BALANCE - Derived, never persisted
// =============================================================================

type PharmacyBalance struct {
	Counterparty     string
	Balance          decimal.Decimal
	TransactionCount int
}

// Standing classifies a balance for display.
type Standing string

const (
	OwedToOperator Standing = "owed_to_operator"
	OwedByOperator Standing = "owed_by_operator"
	Settled        Standing = "settled"
)

func (b PharmacyBalance) Standing() Standing {
	switch b.Balance.Sign() {
	case 1:
		return OwedToOperator
	case -1:
		return OwedByOperator
	default:
		return Settled
	}
}

// Magnitude is the absolute amount owed in either direction.
func (b PharmacyBalance) Magnitude() decimal.Decimal { return b.Balance.Abs() }

// Display renders the signed balance with two decimal places.
func (b PharmacyBalance) Display() string { return b.Balance.StringFixed(2) }

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregate groups txs by exact counterparty name and sums each group's
// signed values. The result depends only on the multiset of transactions,
// not on their order. Empty input yields an empty (non-nil) slice.
//
// Output is sorted by counterparty for stable rendering; callers must not
// rely on that as part of the contract.
func Aggregate(txs []Transaction) []PharmacyBalance {
	index := make(map[string]int, len(txs))
	balances := make([]PharmacyBalance, 0)

	for _, tx := range txs {
		i, ok := index[tx.Counterparty]
		if !ok {
			i = len(balances)
			index[tx.Counterparty] = i
			balances = append(balances, PharmacyBalance{Counterparty: tx.Counterparty, Balance: decimal.Zero})
		}
		balances[i].Balance = balances[i].Balance.Add(tx.SignedValue())
		balances[i].TransactionCount++
	}

	SortBalances(balances)
	return balances
}

// SortBalances orders balances by counterparty name, in place.
func SortBalances(bs []PharmacyBalance) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].Counterparty < bs[j].Counterparty })
}

// BalanceOf returns the balance for one counterparty, if it has any transactions.
func BalanceOf(bs []PharmacyBalance, counterparty string) (PharmacyBalance, bool) {
	for _, b := range bs {
		if b.Counterparty == counterparty {
			return b, true
		}
	}
	return PharmacyBalance{}, false
}
