package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/renderer"
)

type metricsCmd struct {
	panelFlags
	benchmark   string
	weightsPath string
}

func (*metricsCmd) Name() string { return "metrics" }
func (*metricsCmd) Synopsis() string {
	return "Print return, volatility, drawdown, Sharpe, alpha and beta."
}
func (*metricsCmd) Usage() string {
	return `metrics [-tickers A,B] [-period 1y] [-base BRL] [-benchmark ^BVSP] [-weights weights.yaml] [TICKER...]:
  Compute per-ticker metrics against the benchmark. With -weights, also
  compute the metrics of a fixed-weight portfolio of the listed tickers.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	c.panelFlags.setFlags(f)
	f.StringVar(&c.benchmark, "benchmark", "", "Benchmark ticker for alpha and beta (defaults to the configured benchmark)")
	f.StringVar(&c.weightsPath, "weights", "", "YAML file with a weights list of ticker and percent")
}

// metricsOutput is the -json shape of the metrics command
type metricsOutput struct {
	Metrics  *models.MetricsReport `json:"metrics"`
	Weighted *models.MetricsRecord `json:"weighted,omitempty"`
}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	benchmark := c.benchmark
	if benchmark == "" {
		benchmark = a.Config.Benchmark
	}

	var weights []models.Weight
	if c.weightsPath != "" {
		if weights, err = loadWeights(c.weightsPath); err != nil {
			return exitStatus(err)
		}
	}

	ac, err := buildPanel(ctx, a, &c.panelFlags, f.Args(), append(weightTickers(weights), benchmark)...)
	if err != nil {
		return exitStatus(err)
	}

	report := a.AnalysisService.ComputeMetrics(ac.panel, benchmark)

	// A rejected weight set is reported but does not hide the per-ticker metrics
	var weighted *models.MetricsRecord
	if weights != nil {
		weighted, err = a.AnalysisService.WeightedPortfolioMetrics(ac.panel, weights, benchmark)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Weighted portfolio skipped: %v\n", err)
		}
	}

	if *jsonOutput {
		return exitStatus(printJSON(metricsOutput{Metrics: report, Weighted: weighted}))
	}
	printMarkdown(renderer.RenderMetrics(report, weighted))
	return subcommands.ExitSuccess
}
