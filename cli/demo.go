package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/farmacinallis/exchange-ledger/scenario"
)

// DemoCmd replaces the actor's ledger with a demo scenario, or lists them.
type DemoCmd struct {
	Scenario string `arg:"" optional:"" help:"Scenario id. Omit to list scenarios."`
}

func (cmd *DemoCmd) Run(ctx *kong.Context, globals *Globals) error {
	if cmd.Scenario == "" {
		for _, sc := range scenario.List() {
			printInfof(ctx.Stdout, "%s  %s", pad(sc.ID, 16), mutedStyle.Render(sc.Description))
		}
		return nil
	}
	if _, ok := scenario.Find(cmd.Scenario); !ok {
		return fmt.Errorf("unknown scenario %q", cmd.Scenario)
	}

	s, err := globals.open()
	if err != nil {
		return err
	}
	defer s.close()

	view, err := scenario.Load(context.Background(), s.svc, s.actor, cmd.Scenario)
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("loaded %s: %d transactions", cmd.Scenario, len(view.Transactions)))
	printBalances(ctx.Stdout, view.Balances)
	return nil
}
