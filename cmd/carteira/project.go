package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/chart"
	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/renderer"
)

type projectCmd struct {
	panelFlags
	horizon   int
	sims      int
	seed      string
	chartPath string
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "Run a Monte Carlo price projection per ticker." }
func (*projectCmd) Usage() string {
	return `project [-tickers A,B] [-period 1y] [-base BRL] [-horizon 30] [-sims 500] [-seed N] [-chart out.png] [TICKER...]:
  Simulate future prices from each ticker's historical daily returns and
  print the P10, P50 and P90 bands. A fixed -seed reproduces the result.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	c.panelFlags.setFlags(f)
	f.IntVar(&c.horizon, "horizon", 0, "Trading days to project (defaults to the configured horizon)")
	f.IntVar(&c.sims, "sims", 0, "Number of simulated paths (defaults to the configured count)")
	f.StringVar(&c.seed, "seed", "", "Random seed for a reproducible projection")
	f.StringVar(&c.chartPath, "chart", "", "Write the projection fan of the first ticker to this PNG file")
}

func (c *projectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	seed, err := parseSeed(c.seed)
	if err != nil {
		return exitStatus(err)
	}
	horizon := c.horizon
	if horizon == 0 {
		horizon = a.Config.Analysis.HorizonDays
	}

	ac, err := buildPanel(ctx, a, &c.panelFlags, f.Args())
	if err != nil {
		return exitStatus(err)
	}

	results, err := projectAll(ac, horizon, c.sims, seed)
	if err != nil {
		return exitStatus(err)
	}

	if *jsonOutput {
		return exitStatus(printJSON(results))
	}
	var md strings.Builder
	for _, r := range results {
		md.WriteString(renderer.RenderProjection(r, ac.panel.BaseCurrency))
		md.WriteString("\n")
	}
	printMarkdown(md.String())

	if len(results) == 0 {
		return subcommands.ExitFailure
	}
	return exitStatus(writeChart(c.chartPath, func() ([]byte, error) { return chart.RenderProjection(results[0]) }))
}

// projectAll projects every requested ticker present in the panel. Tickers
// without data are reported and skipped; a validation error stops the run.
func projectAll(ac *appContext, horizon, sims int, seed *uint64) ([]*models.ProjectionResult, error) {
	results := make([]*models.ProjectionResult, 0, len(ac.tickers))
	for _, ticker := range ac.tickers {
		r, err := ac.app.AnalysisService.Project(ac.panel, ticker, horizon, sims, seed)
		if errors.Is(err, models.ErrDataUnavailable) {
			fmt.Fprintf(os.Stderr, "Projection skipped: %v\n", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
