package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

var (
	successSymbol = "✓"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#8A8A8A"})
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// pad left-aligns s in a column of width display cells. Pharmacy names
// carry accents, so byte length would misalign the table.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func columnWidth(values []string, min int) int {
	w := min
	for _, v := range values {
		if n := runewidth.StringWidth(v); n > w {
			w = n
		}
	}
	return w
}

// standingText describes a balance the way the dashboard does.
func standingText(b ledger.PharmacyBalance) string {
	amount := b.Magnitude().StringFixed(2)
	switch b.Standing() {
	case ledger.OwedToOperator:
		return successStyle.Render(fmt.Sprintf("%s owes you %s", b.Counterparty, amount))
	case ledger.OwedByOperator:
		return errorStyle.Render(fmt.Sprintf("you owe %s %s", b.Counterparty, amount))
	default:
		return mutedStyle.Render("settled")
	}
}

func printTransactions(w io.Writer, txs []ledger.Transaction) {
	if len(txs) == 0 {
		printInfof(w, "no transactions")
		return
	}

	names := make([]string, len(txs))
	materials := make([]string, len(txs))
	for i, tx := range txs {
		names[i] = tx.Counterparty
		materials[i] = tx.Material
	}
	nameW := columnWidth(names, len("PHARMACY"))
	matW := columnWidth(materials, len("MATERIAL"))

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s  %-8s  %s  %s  %10s  %10s  %10s  %s",
		"DATE", "TYPE", pad("PHARMACY", nameW), pad("MATERIAL", matW), "QTY", "UNIT", "TOTAL", "ID")))
	for _, tx := range txs {
		_, _ = fmt.Fprintf(w, "%-10s  %-8s  %s  %s  %10s  %10s  %10s  %s\n",
			tx.Date, tx.Type, pad(tx.Counterparty, nameW), pad(tx.Material, matW),
			tx.Quantity.String(), tx.UnitPrice.StringFixed(2), tx.TotalValue.StringFixed(2),
			mutedStyle.Render(string(tx.ID)))
	}
}

func printBalances(w io.Writer, bs []ledger.PharmacyBalance) {
	if len(bs) == 0 {
		printInfof(w, "no transactions recorded yet")
		return
	}

	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Counterparty
	}
	nameW := columnWidth(names, len("PHARMACY"))

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s  %5s  %12s  %s",
		pad("PHARMACY", nameW), "TXS", "BALANCE", "STANDING")))
	for _, b := range bs {
		_, _ = fmt.Fprintf(w, "%s  %5d  %12s  %s\n",
			pad(b.Counterparty, nameW), b.TransactionCount, b.Display(), standingText(b))
	}
}
