package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/carteira/internal/common"
)

type versionCmd struct {
	banner bool
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "Print the version." }
func (*versionCmd) Usage() string {
	return `version [-banner]:
  Print version, build and commit.
`
}

func (c *versionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.banner, "banner", false, "Print the startup banner with the active configuration")
}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	if !c.banner {
		fmt.Println(common.GetFullVersion())
		return subcommands.ExitSuccess
	}

	a, err := loadApp()
	if err != nil {
		return exitStatus(err)
	}
	common.PrintBanner(os.Stdout, a.Config, a.Logger)
	return subcommands.ExitSuccess
}
