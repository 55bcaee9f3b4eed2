package logs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/youta-t/flarc"

	"github.com/outpost-run/outpost/cmd/outpost/config/profiles"
	"github.com/outpost-run/outpost/cmd/outpost/subcommands/common"
	"github.com/outpost-run/outpost/pkg/api"
	apilogs "github.com/outpost-run/outpost/pkg/api/types/logs"
	"github.com/outpost-run/outpost/pkg/object"
)

type Flag struct {
	Namespace string `flag:"namespace" help:"namespace of the deployment name."`
	Follow    bool   `flag:"follow" alias:"f" help:"keep the stream open and print new entries as they arrive."`
	Cursor    string `flag:"cursor" help:"resume after this log cursor."`
}

const ARG_NAME = "DEPLOYMENT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"print the log stream of a deployment.",
		Flag{
			Namespace: string(object.NamespaceAccount),
		},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "deployment name whose logs are shown.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Print the log stream of a deployment, oldest first.

With --follow, the stream stays open and new entries are printed as the
application produces them. Without it, printing stops at the newest entry
the backend has.
`),
	)
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		profile *profiles.Profile,
		client api.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		name := cl.Args()[ARG_NAME][0]
		flags := cl.Flags()

		dep, err := client.GetDeployment(ctx, name, flags.Namespace)
		if err != nil {
			return err
		}
		if dep.AppID == "" {
			return fmt.Errorf(
				"deployment %s (namespace: %s) is not found", name, flags.Namespace,
			)
		}

		rc, err := client.Logs(ctx, dep.AppID, flags.Cursor, flags.Follow)
		if err != nil {
			return err
		}
		defer rc.Close()

		dec := json.NewDecoder(rc)
		for {
			var entry apilogs.Entry
			if err := dec.Decode(&entry); err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			fmt.Fprintf(
				cl.Stdout(), "%s\t%s\t%s\n",
				entry.At.Format("2006-01-02T15:04:05Z07:00"), entry.TaskID, entry.Line,
			)
		}
	}
}
