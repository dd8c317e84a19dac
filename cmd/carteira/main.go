// Command carteira fetches prices, builds a base-currency panel and prints
// metrics, projections, portfolio valuations and market sentiment.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

var (
	configPath = flag.String("config", "", "Path to the carteira.toml config file (defaults to $CARTEIRA_CONFIG)")
	jsonOutput = flag.Bool("json", false, "Print results as JSON instead of markdown")
	plainText  = flag.Bool("plain", false, "Print raw markdown without terminal styling")
)

// commands lists every analysis subcommand
var commands = []subcommands.Command{
	&panelCmd{},
	&metricsCmd{},
	&projectCmd{},
	&portfolioCmd{},
	&sentimentCmd{},
	&reportCmd{},
	&versionCmd{},
}

func main() {
	completion().Complete("carteira")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
