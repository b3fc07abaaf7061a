// Package cli implements ledgerctl, the operator's command-line view of
// the exchange ledger.
package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/farmacinallis/exchange-ledger/ledger"
	"github.com/farmacinallis/exchange-ledger/store/sqlite"
)

// Globals defines global flags available to all commands.
type Globals struct {
	DB      string `help:"SQLite database path." default:"ledger.db" env:"LEDGER_DB"`
	Actor   string `help:"Actor id that owns the records." env:"LEDGER_ACTOR"`
	Verbose bool   `help:"Log ledger operations to stderr." short:"v"`
}

type Commands struct {
	Globals

	Add      AddCmd      `cmd:"" help:"Register a purchase or sale."`
	Edit     EditCmd     `cmd:"" help:"Edit fields of an existing transaction."`
	Rm       RmCmd       `cmd:"" help:"Delete a transaction."`
	List     ListCmd     `cmd:"" help:"List transactions, most recent first."`
	Balances BalancesCmd `cmd:"" help:"Show who owes whom, per pharmacy."`
	Demo     DemoCmd     `cmd:"" help:"Load a demo ledger (replaces yours)."`
}

// session is what every command needs: a service over the store and the
// actor it acts for.
type session struct {
	svc   *ledger.Service
	actor ledger.ActorID
	close func() error
}

func (g *Globals) open() (*session, error) {
	actor, ok := ledger.StaticActor(g.Actor).CurrentActor(context.Background())
	if !ok {
		return nil, fmt.Errorf("no actor: pass --actor or set LEDGER_ACTOR")
	}

	store, err := sqlite.New(g.DB)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if g.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &session{
		svc:   ledger.NewService(store, logger),
		actor: actor,
		close: store.Close,
	}, nil
}
