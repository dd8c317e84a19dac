package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/renderer"
)

type sentimentCmd struct{}

func (*sentimentCmd) Name() string     { return "sentiment" }
func (*sentimentCmd) Synopsis() string { return "Print the Fear & Greed index." }
func (*sentimentCmd) Usage() string {
	return `sentiment:
  Print the current Fear & Greed reading and its recent history. Needs
  clients.sentiment.api_key, RAPIDAPI_KEY or CARTEIRA_RAPIDAPI_KEY.
`
}

func (*sentimentCmd) SetFlags(*flag.FlagSet) {}

func (*sentimentCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}

	s := a.SentimentService.Current(ctx)
	if *jsonOutput {
		return exitStatus(printJSON(s))
	}
	printMarkdown(renderer.RenderSentiment(s))
	return subcommands.ExitSuccess
}
