package deploy

import (
	"context"
	"fmt"
	"log"

	"github.com/cheggaaa/pb/v3"
	"github.com/youta-t/flarc"

	"github.com/outpost-run/outpost/cmd/outpost/config/profiles"
	"github.com/outpost-run/outpost/cmd/outpost/manifest"
	"github.com/outpost-run/outpost/cmd/outpost/subcommands/common"
	"github.com/outpost-run/outpost/pkg/api"
	apilogs "github.com/outpost-run/outpost/pkg/api/types/logs"
	"github.com/outpost-run/outpost/pkg/app"
	"github.com/outpost-run/outpost/pkg/object"
)

type Flag struct {
	Name      string `flag:"name" help:"deployment name. Default: the name in the manifest."`
	Namespace string `flag:"namespace" help:"namespace of the deployment name."`
}

const ARG_MANIFEST_FILE = "MANIFEST_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"deploy an application described by a manifest.",
		Flag{
			Namespace: string(object.NamespaceAccount),
		},
		flarc.Args{
			{
				Name: ARG_MANIFEST_FILE, Required: true,
				Help: "filepath to the application manifest.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Deploy the application described by MANIFEST_FILE under a durable name.

Redeploying under the same name updates the application in place: objects
declared under the same tag keep their identities where the backend allows
it, so consumers of the deployment see an update, not a replacement.

To deploy under the manifest's own name:

	{{ .Command }} ./outpost.yaml

To deploy the same manifest under an explicit name:

	{{ .Command }} --name my-app-staging ./outpost.yaml
`),
	)
}

// barSink drives a progress bar, one tick per created object.
type barSink struct {
	bar *pb.ProgressBar
}

func (s *barSink) Creating(tag string, message string) {
	if message != "" {
		s.bar.Set("prefix", message+" ")
	}
}

func (s *barSink) Created(tag string, message string) {
	if message != "" {
		s.bar.Set("prefix", message+" ")
	}
	s.bar.Increment()
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
		manifestFile := cl.Args()[ARG_MANIFEST_FILE][0]

		m, err := manifest.Load(manifestFile)
		if err != nil {
			return fmt.Errorf("cannot load manifest %s: %w", manifestFile, err)
		}

		a, err := manifest.Build(m)
		if err != nil {
			return fmt.Errorf("invalid manifest %s: %w", manifestFile, err)
		}

		flags := cl.Flags()

		bar := pb.New(a.Blueprint().Len())
		bar.SetWriter(cl.Stderr())
		bar.Start()

		appID, err := a.Deploy(
			ctx, client, flags.Name, object.Namespace(flags.Namespace),
			app.WithProgress(&barSink{bar: bar}),
			app.WithLogSink(func(e apilogs.Entry) {
				fmt.Fprintf(cl.Stdout(), "%s\t%s\n", e.TaskID, e.Line)
			}),
		)
		bar.Finish()
		if err != nil {
			return err
		}

		logger.Printf(
			"deployment %s (namespace: %s) is up to date. app id: %s",
			a.DeploymentName(), flags.Namespace, appID,
		)
		return nil
	}
}
