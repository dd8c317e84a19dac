package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/renderer"
)

type reportCmd struct {
	panelFlags
	benchmark    string
	weightsPath  string
	holdingsPath string
	horizon      int
	sims         int
	seed         string
	rows         int
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "Print sentiment, panel, metrics, projections and portfolio in one report."
}
func (*reportCmd) Usage() string {
	return `report [-tickers A,B] [-period 1y] [-base BRL] [-benchmark ^BVSP] [-weights w.yaml] [-holdings h.yaml] [-horizon 30] [-sims 500] [-seed N] [-rows N] [TICKER...]:
  Run every analysis over one panel and print a combined report.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.panelFlags.setFlags(f)
	f.StringVar(&c.benchmark, "benchmark", "", "Benchmark ticker for alpha and beta (defaults to the configured benchmark)")
	f.StringVar(&c.weightsPath, "weights", "", "YAML file with a weights list of ticker and percent")
	f.StringVar(&c.holdingsPath, "holdings", "", "YAML file with a holdings list of ticker, quantity and avg_cost")
	f.IntVar(&c.horizon, "horizon", 0, "Trading days to project (defaults to the configured horizon)")
	f.IntVar(&c.sims, "sims", 0, "Number of simulated paths (defaults to the configured count)")
	f.StringVar(&c.seed, "seed", "", "Random seed for reproducible projections")
	f.IntVar(&c.rows, "rows", renderer.DefaultPanelRows, "Number of trailing panel rows to print, 0 for all")
}

// reportOutput is the -json shape of the report command
type reportOutput struct {
	Sentiment   *models.Sentiment          `json:"sentiment"`
	Panel       *models.Panel              `json:"panel"`
	Metrics     *models.MetricsReport      `json:"metrics"`
	Weighted    *models.MetricsRecord      `json:"weighted,omitempty"`
	Projections []*models.ProjectionResult `json:"projections"`
	Portfolio   *models.PortfolioSnapshot  `json:"portfolio,omitempty"`
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	seed, err := parseSeed(c.seed)
	if err != nil {
		return exitStatus(err)
	}
	benchmark := c.benchmark
	if benchmark == "" {
		benchmark = a.Config.Benchmark
	}
	horizon := c.horizon
	if horizon == 0 {
		horizon = a.Config.Analysis.HorizonDays
	}

	var weights []models.Weight
	if c.weightsPath != "" {
		if weights, err = loadWeights(c.weightsPath); err != nil {
			return exitStatus(err)
		}
	}
	var holdings []models.Holding
	if c.holdingsPath != "" {
		if holdings, err = loadHoldings(c.holdingsPath); err != nil {
			return exitStatus(err)
		}
	}

	// Sentiment does not depend on the panel
	sentimentCh := make(chan *models.Sentiment, 1)
	go func() {
		sentimentCh <- a.SentimentService.Current(ctx)
	}()

	extra := append(weightTickers(weights), holdingTickers(holdings)...)
	extra = append(extra, benchmark)
	ac, err := buildPanel(ctx, a, &c.panelFlags, f.Args(), extra...)
	if err != nil {
		return exitStatus(err)
	}

	out := reportOutput{
		Panel:   ac.panel,
		Metrics: a.AnalysisService.ComputeMetrics(ac.panel, benchmark),
	}
	if weights != nil {
		out.Weighted, err = a.AnalysisService.WeightedPortfolioMetrics(ac.panel, weights, benchmark)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Weighted portfolio skipped: %v\n", err)
		}
	}
	if out.Projections, err = projectAll(ac, horizon, c.sims, seed); err != nil {
		return exitStatus(err)
	}
	if holdings != nil {
		if out.Portfolio, err = a.AnalysisService.EvaluatePortfolio(ac.panel, holdings, time.Time{}); err != nil {
			return exitStatus(err)
		}
	}
	out.Sentiment = <-sentimentCh

	if *jsonOutput {
		return exitStatus(printJSON(out))
	}
	printMarkdown(renderer.RenderReport(&renderer.Report{
		Panel:       out.Panel,
		PanelRows:   c.rows,
		Metrics:     out.Metrics,
		Weighted:    out.Weighted,
		Projections: out.Projections,
		Portfolio:   out.Portfolio,
		Sentiment:   out.Sentiment,
	}))
	return subcommands.ExitSuccess
}
