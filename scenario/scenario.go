/*
Package scenario holds demo ledgers for trying the UI and the CLI.

PURPOSE:
  Populates an actor's ledger with realistic exchanges so that every
  balance standing and both pricing modes are visible right away.

AVAILABLE SCENARIOS:
  single-pharmacy:  A running account with one pharmacy
  mixed-standings:  One pharmacy owes you, you owe another, one is settled
  by-the-gram:      Materials sold by weight, priced by total

HOW SCENARIOS WORK:
 1. Delete the actor's existing transactions (other actors are untouched)
 2. Create each entry through ledger.Service, so validation and
    reconciliation run exactly as they do for user input
 3. Return the final refreshed view

Entry dates are offsets back from today so a scenario never trips the
future-date rule.

NOTE:
  Loading a scenario wipes the actor's ledger. Only use in demo setups.

SEE ALSO:
  - api/scenarios.go: HTTP handlers
  - cli/demo.go: ledgerctl demo
*/
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	entries []entry
}

// entry is one transaction, dated daysAgo before today. Exactly one of
// unitPrice / total is set.
type entry struct {
	daysAgo      int
	typ          ledger.TransactionType
	counterparty string
	material     string
	quantity     string
	unitPrice    string
	total        string
}

var scenarios = []Scenario{
	{
		ID:          "single-pharmacy",
		Name:        "Single Pharmacy",
		Description: "A month of back-and-forth with one pharmacy",
		entries: []entry{
			{30, ledger.Purchase, "Farmácia Central", "Amoxicilina 500mg", "100", "0.85", ""},
			{21, ledger.Sale, "Farmácia Central", "Dipirona 1g", "40", "0.60", ""},
			{12, ledger.Sale, "Farmácia Central", "Ibuprofeno 600mg", "30", "1.10", ""},
			{3, ledger.Purchase, "Farmácia Central", "Omeprazol 20mg", "25", "", "50.00"},
		},
	},
	{
		ID:          "mixed-standings",
		Name:        "Mixed Standings",
		Description: "One pharmacy owes you, you owe another, and one is settled",
		entries: []entry{
			{20, ledger.Sale, "Drogaria Alfa", "Losartana 50mg", "60", "0.75", ""},
			{18, ledger.Purchase, "Drogaria Alfa", "Metformina 850mg", "20", "0.90", ""},
			{15, ledger.Purchase, "Farmácia Beta", "Amoxicilina 500mg", "200", "0.80", ""},
			{9, ledger.Sale, "Farmácia Beta", "Dipirona 1g", "50", "0.55", ""},
			{7, ledger.Purchase, "Farmácia Gama", "Paracetamol 750mg", "80", "", "40.00"},
			{2, ledger.Sale, "Farmácia Gama", "Paracetamol 750mg", "80", "", "40.00"},
		},
	},
	{
		ID:          "by-the-gram",
		Name:        "By the Gram",
		Description: "Raw materials weighed in grams with fractional quantities",
		entries: []entry{
			{10, ledger.Purchase, "Farmácia de Manipulação Sul", "Ácido Salicílico (grama)", "12.5", "", "43.75"},
			{6, ledger.Sale, "Farmácia de Manipulação Sul", "Minoxidil (grama)", "3.2", "18.40", ""},
			{1, ledger.Sale, "Drogaria Alfa", "Cafeína anidra (grama)", "7.75", "", "23.25"},
		},
	},
}

// List returns the available scenarios.
func List() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// Find returns the scenario with the given id.
func Find(id string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// =============================================================================
// LOADING
// =============================================================================

// Load replaces actor's ledger with scenario id. Entry dates count back
// from the service clock.
func Load(ctx context.Context, svc *ledger.Service, actor ledger.ActorID, id string) (ledger.View, error) {
	sc, ok := Find(id)
	if !ok {
		return ledger.View{}, fmt.Errorf("unknown scenario: %s", id)
	}

	existing, err := svc.List(ctx, actor)
	if err != nil {
		return ledger.View{}, err
	}
	for _, tx := range existing {
		if _, err := svc.Delete(ctx, actor, tx.ID); err != nil && !ledger.IsNotFound(err) {
			return ledger.View{}, err
		}
	}

	today := svc.Now()
	for _, e := range sc.entries {
		d, err := e.draft(today)
		if err != nil {
			return ledger.View{}, fmt.Errorf("scenario %s: %w", id, err)
		}
		if _, _, err := svc.Create(ctx, actor, d); err != nil {
			return ledger.View{}, fmt.Errorf("scenario %s: %w", id, err)
		}
	}

	return svc.Refresh(ctx, actor)
}

func (e entry) draft(today time.Time) (ledger.Draft, error) {
	d := ledger.Draft{
		Date:         ledger.DateOf(today.AddDate(0, 0, -e.daysAgo)),
		Type:         e.typ,
		Counterparty: e.counterparty,
		Material:     e.material,
	}

	var err error
	if d.Quantity, err = ledger.ParseDecimal(ledger.FieldQuantity, e.quantity); err != nil {
		return d, err
	}
	if e.total != "" {
		total, err := ledger.ParseDecimal(ledger.FieldTotalValue, e.total)
		if err != nil {
			return d, err
		}
		d.TotalValue = decimal.NewNullDecimal(total)
		return d, nil
	}
	d.UnitPrice, err = ledger.ParseDecimal(ledger.FieldUnitPrice, e.unitPrice)
	return d, err
}
