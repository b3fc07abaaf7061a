package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

type AddCmd struct {
	Type         string `arg:"" help:"purchase or sale (compra / venda accepted)."`
	Counterparty string `arg:"" help:"Pharmacy name."`
	Material     string `arg:"" help:"Raw material name."`
	Quantity     string `arg:"" help:"Quantity, fractional allowed."`

	UnitPrice string `help:"Price per unit." xor:"price" name:"unit-price"`
	Total     string `help:"Total value; the unit price is derived from it." xor:"price"`
	Date      string `help:"Transaction date (YYYY-MM-DD). Defaults to today."`
}

func (cmd *AddCmd) Run(ctx *kong.Context, globals *Globals) error {
	d, err := cmd.draft(time.Now())
	if err != nil {
		return err
	}

	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	tx, view, err := s.svc.Create(context.Background(), s.actor, d)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("%s of %s %s recorded (%s)", tx.Type, tx.Quantity, tx.Material, tx.ID))
	if b, ok := ledger.BalanceOf(view.Balances, tx.Counterparty); ok {
		printInfof(ctx.Stdout, "%s", standingText(b))
	}
	return nil
}

func (cmd *AddCmd) draft(now time.Time) (ledger.Draft, error) {
	var (
		d   ledger.Draft
		err error
	)
	d.Date = ledger.DateOf(now)
	if cmd.Date != "" {
		if d.Date, err = ledger.ParseDate(cmd.Date); err != nil {
			return d, err
		}
	}
	if d.Type, err = ledger.ParseTransactionType(cmd.Type); err != nil {
		return d, err
	}
	d.Counterparty = cmd.Counterparty
	d.Material = cmd.Material
	if d.Quantity, err = ledger.ParseDecimal(ledger.FieldQuantity, cmd.Quantity); err != nil {
		return d, err
	}

	switch {
	case cmd.Total != "":
		total, err := ledger.ParseDecimal(ledger.FieldTotalValue, cmd.Total)
		if err != nil {
			return d, err
		}
		d.TotalValue = decimal.NewNullDecimal(total)
	case cmd.UnitPrice != "":
		if d.UnitPrice, err = ledger.ParseDecimal(ledger.FieldUnitPrice, cmd.UnitPrice); err != nil {
			return d, err
		}
	default:
		return d, &ledger.ValidationError{Field: ledger.FieldUnitPrice, Reason: "pass --unit-price or --total"}
	}
	return d, nil
}

// EditCmd changes only the flags that are given.
type EditCmd struct {
	ID string `arg:"" help:"Transaction id."`

	Type         string `help:"purchase or sale."`
	Counterparty string `help:"Pharmacy name."`
	Material     string `help:"Raw material name."`
	Quantity     string `help:"Quantity."`
	UnitPrice    string `help:"Price per unit; recomputes the total." name:"unit-price"`
	Total        string `help:"Total value; recomputes the unit price."`
	Date         string `help:"Transaction date (YYYY-MM-DD)."`
}

func (cmd *EditCmd) Run(ctx *kong.Context, globals *Globals) error {
	p, err := cmd.patch()
	if err != nil {
		return err
	}
	if !p.Touched() {
		return fmt.Errorf("nothing to change")
	}

	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	tx, _, err := s.svc.Update(context.Background(), s.actor, ledger.TransactionID(cmd.ID), p)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("updated %s: %s %s x %s = %s",
		tx.ID, tx.Material, tx.Quantity, tx.UnitPrice.StringFixed(2), tx.TotalValue.StringFixed(2)))
	return nil
}

func (cmd *EditCmd) patch() (ledger.Patch, error) {
	var p ledger.Patch
	if cmd.Date != "" {
		d, err := ledger.ParseDate(cmd.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if cmd.Type != "" {
		t, err := ledger.ParseTransactionType(cmd.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if cmd.Counterparty != "" {
		p.Counterparty = &cmd.Counterparty
	}
	if cmd.Material != "" {
		p.Material = &cmd.Material
	}
	for _, f := range []struct {
		field ledger.Field
		raw   string
		dst   *decimal.NullDecimal
	}{
		{ledger.FieldQuantity, cmd.Quantity, &p.Quantity},
		{ledger.FieldUnitPrice, cmd.UnitPrice, &p.UnitPrice},
		{ledger.FieldTotalValue, cmd.Total, &p.TotalValue},
	} {
		if f.raw == "" {
			continue
		}
		v, err := ledger.ParseDecimal(f.field, f.raw)
		if err != nil {
			return p, err
		}
		*f.dst = decimal.NewNullDecimal(v)
	}
	return p, nil
}

type RmCmd struct {
	ID string `arg:"" help:"Transaction id."`
}

func (cmd *RmCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.svc.Delete(context.Background(), s.actor, ledger.TransactionID(cmd.ID)); err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("deleted %s", cmd.ID))
	return nil
}

type ListCmd struct {
	Search string `help:"Case-insensitive match on pharmacy or material." short:"s"`
	Limit  int    `help:"Show at most N transactions (0 = all)." default:"0"`
}

func (cmd *ListCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	txs, err := s.svc.List(context.Background(), s.actor)
	if err != nil {
		return err
	}
	printTransactions(ctx.Stdout, ledger.Recent(ledger.Filter(txs, cmd.Search), cmd.Limit))
	return nil
}

type BalancesCmd struct{}

func (cmd *BalancesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	view, err := s.svc.Refresh(context.Background(), s.actor)
	if err != nil {
		return err
	}
	printBalances(ctx.Stdout, view.Balances)
	return nil
}
