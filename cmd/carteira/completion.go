package main

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/bobmcallan/carteira/internal/models"
)

// completion describes the command line for shell completion. Completion is
// served when the shell sets COMP_LINE; install with COMP_INSTALL=1 carteira.
func completion() *complete.Command {
	periods := predict.Set{}
	for _, p := range models.Periods() {
		periods = append(periods, string(p))
	}

	sub := make(map[string]*complete.Command, len(commands))
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)

		flags := map[string]complete.Predictor{}
		fs.VisitAll(func(f *flag.Flag) {
			switch f.Name {
			case "period":
				flags[f.Name] = periods
			case "holdings", "weights":
				flags[f.Name] = predict.Files("*.yaml")
			case "chart":
				flags[f.Name] = predict.Files("*.png")
			default:
				flags[f.Name] = predict.Something
			}
		})
		sub[c.Name()] = &complete.Command{Flags: flags}
	}

	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.toml"),
			"json":   predict.Nothing,
			"plain":  predict.Nothing,
		},
	}
}
