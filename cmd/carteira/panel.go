package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/app"
	"github.com/bobmcallan/carteira/internal/chart"
	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/renderer"
)

type panelCmd struct {
	panelFlags
	rows      int
	chartPath string
}

func (*panelCmd) Name() string     { return "panel" }
func (*panelCmd) Synopsis() string { return "Build and print the base-currency price panel." }
func (*panelCmd) Usage() string {
	return `panel [-tickers A,B] [-period 1y] [-base BRL] [-rows N] [-chart out.png] [TICKER...]:
  Fetch prices, convert them to the base currency and print the last rows.
`
}

func (c *panelCmd) SetFlags(f *flag.FlagSet) {
	c.panelFlags.setFlags(f)
	f.IntVar(&c.rows, "rows", renderer.DefaultPanelRows, "Number of trailing rows to print, 0 for all")
	f.StringVar(&c.chartPath, "chart", "", "Write a rebased line chart to this PNG file")
}

func (c *panelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	ac, err := buildPanel(ctx, a, &c.panelFlags, f.Args())
	if err != nil {
		return exitStatus(err)
	}
	p := ac.panel

	if *jsonOutput {
		return exitStatus(printJSON(p))
	}
	printMarkdown(renderer.RenderPanel(p, c.rows))
	return exitStatus(writeChart(c.chartPath, func() ([]byte, error) { return chart.RenderRebased(p) }))
}

// buildPanel is the shared first step of the analysis commands. extra
// tickers are fetched alongside but not counted as requested.
func buildPanel(ctx context.Context, a *app.App, pf *panelFlags, args []string, extra ...string) (*appContext, error) {
	tickers, period, base, err := pf.resolve(a.Config, args)
	if err != nil {
		return nil, err
	}
	fetch := append([]string(nil), tickers...)
	for _, t := range extra {
		fetch = withTicker(fetch, t)
	}
	if len(fetch) == 0 {
		return nil, models.NewValidationError("tickers", "no tickers given and none configured")
	}

	p, err := a.AnalysisService.BuildPanel(ctx, fetch, period, base)
	if err != nil {
		return nil, fmt.Errorf("failed to build panel: %w", err)
	}
	return &appContext{app: a, panel: p, tickers: tickers}, nil
}
