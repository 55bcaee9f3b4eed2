package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/youta-t/flarc"

	"github.com/outpost-run/outpost/cmd/outpost/subcommands/common"
	subdeploy "github.com/outpost-run/outpost/cmd/outpost/subcommands/deploy"
	subinit "github.com/outpost-run/outpost/cmd/outpost/subcommands/initialize"
	"github.com/outpost-run/outpost/cmd/outpost/subcommands/logger"
	sublogs "github.com/outpost-run/outpost/cmd/outpost/subcommands/logs"
	sublookup "github.com/outpost-run/outpost/cmd/outpost/subcommands/lookup"
	subver "github.com/outpost-run/outpost/cmd/outpost/subcommands/version"
	"github.com/outpost-run/outpost/pkg/utils/try"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	deploy := try.To(subdeploy.New()).OrFatal(logger)
	lookup := try.To(sublookup.New()).OrFatal(logger)
	logs := try.To(sublogs.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	outpost := try.To(
		flarc.NewCommandGroup(
			"Outpost commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("deploy", deploy),
			flarc.WithSubcommand("lookup", lookup),
			flarc.WithSubcommand("logs", logs),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, outpost, flarc.WithHelp(true)))
}
