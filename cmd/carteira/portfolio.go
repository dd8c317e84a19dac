package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/renderer"
)

type portfolioCmd struct {
	panelFlags
	holdingsPath string
	asOf         string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "Value holdings and report profit and loss." }
func (*portfolioCmd) Usage() string {
	return `portfolio -holdings holdings.yaml [-period 1y] [-base BRL] [-as-of YYYY-MM-DD]:
  Value each holding at its latest price on or before the as-of date and
  print value, invested amount, P&L and weight per position.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	c.panelFlags.setFlags(f)
	c.explicitOnly = true
	f.StringVar(&c.holdingsPath, "holdings", "", "YAML file with a holdings list of ticker, quantity and avg_cost")
	f.StringVar(&c.asOf, "as-of", "", "Valuation date (defaults to the latest panel date)")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holdingsPath == "" {
		return exitStatus(models.NewValidationError("holdings", "-holdings is required"))
	}
	asOf, err := parseDate(c.asOf)
	if err != nil {
		return exitStatus(err)
	}
	holdings, err := loadHoldings(c.holdingsPath)
	if err != nil {
		return exitStatus(err)
	}

	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	ac, err := buildPanel(ctx, a, &c.panelFlags, f.Args(), holdingTickers(holdings)...)
	if err != nil {
		return exitStatus(err)
	}

	snapshot, err := a.AnalysisService.EvaluatePortfolio(ac.panel, holdings, asOf)
	if err != nil {
		return exitStatus(err)
	}

	if *jsonOutput {
		return exitStatus(printJSON(snapshot))
	}
	printMarkdown(renderer.RenderPortfolio(snapshot))
	return subcommands.ExitSuccess
}
