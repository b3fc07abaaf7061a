package ledger

import (
	"sort"
	"strings"
)

// =============================================================================
// ORDERING
// =============================================================================

// OrderColumn is a sortable transaction column. Stores translate it to
// their own query language; only these columns are accepted.
type OrderColumn string

const (
	OrderByDate         OrderColumn = "transaction_date"
	OrderByCreatedAt    OrderColumn = "created_at"
	OrderByCounterparty OrderColumn = "counterparty_name"
	OrderByTotalValue   OrderColumn = "total_value"
)

type OrderTerm struct {
	Column     OrderColumn
	Descending bool
}

// OrderSpec is applied left to right; later terms break ties.
type OrderSpec []OrderTerm

// DefaultOrder is most recent first: transaction date, then creation time.
var DefaultOrder = OrderSpec{
	{Column: OrderByDate, Descending: true},
	{Column: OrderByCreatedAt, Descending: true},
}

func (o OrderSpec) less(a, b Transaction) bool {
	for _, term := range o {
		c := compareColumn(term.Column, a, b)
		if c == 0 {
			continue
		}
		if term.Descending {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareColumn(col OrderColumn, a, b Transaction) int {
	switch col {
	case OrderByDate:
		return a.Date.Time.Compare(b.Date.Time)
	case OrderByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case OrderByCounterparty:
		return strings.Compare(a.Counterparty, b.Counterparty)
	case OrderByTotalValue:
		return a.TotalValue.Cmp(b.TotalValue)
	}
	return 0
}

// SortTransactions sorts txs in place by order. The sort is stable so
// fully tied records keep their input order.
func SortTransactions(txs []Transaction, order OrderSpec) {
	sort.SliceStable(txs, func(i, j int) bool { return order.less(txs[i], txs[j]) })
}

// =============================================================================
// FILTER - Search over the materialized list
// =============================================================================

// Filter keeps transactions whose counterparty or material contains term,
// ignoring case. An empty term returns txs itself. The input is never
// modified and the store is never consulted.
func Filter(txs []Transaction, term string) []Transaction {
	if term == "" {
		return txs
	}
	needle := strings.ToLower(term)
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Counterparty), needle) ||
			strings.Contains(strings.ToLower(tx.Material), needle) {
			out = append(out, tx)
		}
	}
	return out
}

// Recent returns at most n leading transactions of an already ordered list.
// n <= 0 means no limit.
func Recent(txs []Transaction, n int) []Transaction {
	if n <= 0 || len(txs) <= n {
		return txs
	}
	return txs[:n]
}
