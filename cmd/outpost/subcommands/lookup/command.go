package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/outpost-run/outpost/cmd/outpost/config/profiles"
	"github.com/outpost-run/outpost/cmd/outpost/subcommands/common"
	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/object"
)

type Flag struct {
	Namespace string `flag:"namespace" help:"namespace of the deployment name."`
}

const ARG_NAME = "DEPLOYMENT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"show a deployment and its published objects.",
		Flag{
			Namespace: string(object.NamespaceAccount),
		},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "deployment name to look up.",
			},
		},
		common.NewTask(Task()),
	)
}

// found is what gets printed: the deployment plus its object map.
type found struct {
	AppID     string            `json:"appId"`
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Objects   map[string]string `json:"objects"`
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

		om, err := client.GetObjects(ctx, dep.AppID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(found{
			AppID:     dep.AppID,
			Name:      dep.Name,
			Namespace: flags.Namespace,
			Objects:   om.ObjectIDs,
		})
	}
}
