package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/carteira/internal/app"
	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// panelFlags are the flags every panel-building command shares. Empty values
// fall back to the config file.
type panelFlags struct {
	tickers string
	period  string
	base    string

	explicitOnly bool // never fall back to the configured tickers
}

func (p *panelFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&p.tickers, "tickers", "", "Comma separated tickers (defaults to the configured list)")
	f.StringVar(&p.period, "period", "", "Lookback period: 1mo, 3mo, 6mo, 1y, 2y or 5y")
	f.StringVar(&p.base, "base", "", "Base currency, an ISO-4217 code")
}

// resolve returns the tickers, period and base currency, preferring flags
// and positional args over the config
func (p *panelFlags) resolve(cfg *common.Config, args []string) ([]string, models.Period, string, error) {
	tickers := common.SplitList(p.tickers)
	tickers = append(tickers, args...)
	if len(tickers) == 0 && !p.explicitOnly {
		tickers = cfg.Tickers
	}

	period := p.period
	if period == "" {
		period = cfg.Analysis.Period
	}
	parsed, err := models.ParsePeriod(period)
	if err != nil {
		return nil, "", "", err
	}

	base := p.base
	if base == "" {
		base = cfg.BaseCurrency
	}
	return tickers, parsed, strings.ToUpper(base), nil
}

func loadApp() (*app.App, error) {
	return app.NewApp(*configPath)
}

// exitStatus reports err and maps it to an exit status
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, models.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// printMarkdown prints md styled for the terminal unless -plain is set
func printMarkdown(md string) {
	if *plainText {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(140),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type holdingsFile struct {
	Holdings []models.Holding `yaml:"holdings"`
}

type weightsFile struct {
	Weights []models.Weight `yaml:"weights"`
}

// loadHoldings reads a YAML file with a top-level holdings list
func loadHoldings(path string) ([]models.Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file %s: %w", path, err)
	}
	var f holdingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse holdings file %s: %w", path, err)
	}
	if len(f.Holdings) == 0 {
		return nil, models.NewValidationError("holdings", "%s lists no holdings", path)
	}
	return f.Holdings, nil
}

// loadWeights reads a YAML file with a top-level weights list
func loadWeights(path string) ([]models.Weight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}
	var f weightsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse weights file %s: %w", path, err)
	}
	return f.Weights, nil
}

func holdingTickers(holdings []models.Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Ticker)
	}
	return out
}

func weightTickers(weights []models.Weight) []string {
	out := make([]string, 0, len(weights))
	for _, w := range weights {
		out = append(out, w.Ticker)
	}
	return out
}

// withTicker appends ticker unless already present
func withTicker(tickers []string, ticker string) []string {
	if ticker == "" {
		return tickers
	}
	for _, t := range tickers {
		if strings.EqualFold(t, ticker) {
			return tickers
		}
	}
	return append(tickers, ticker)
}

// parseSeed parses an optional simulation seed; empty means random
func parseSeed(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, models.NewValidationError("seed", "%q is not a non-negative integer", s)
	}
	return &v, nil
}

// parseDate parses an optional YYYY-MM-DD date; empty means zero
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, models.NewValidationError("as-of", "%q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}

func writeChart(path string, render func() ([]byte, error)) error {
	if path == "" {
		return nil
	}
	png, err := render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Chart written to %s\n", path)
	return nil
}

// appContext is what every analysis command works from
type appContext struct {
	app     *app.App
	panel   *models.Panel
	tickers []string // requested, without benchmark or holdings extras
}
