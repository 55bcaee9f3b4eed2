package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/api/types/logs"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/utils"
	"github.com/outpost-run/outpost/pkg/utils/taskgroup"
)

// DefaultLogGrace is how long the log-streaming task may keep draining
// after the workload has finished.
const DefaultLogGrace = 10 * time.Second

// Body is the caller's workload, executed while the application is RUNNING.
type Body func(ctx context.Context, a *App) error

// ProgressSink receives object-creation progress. Every object yields one
// Creating and one Created call; message may be empty for objects with
// nothing human-readable to say.
type ProgressSink interface {
	Creating(tag string, message string)
	Created(tag string, message string)
}

type runConfig struct {
	grace    time.Duration
	logSink  func(logs.Entry)
	progress ProgressSink
}

type RunOption func(*runConfig) *runConfig

// WithLogGrace bounds how long log draining may outlive the workload.
func WithLogGrace(d time.Duration) RunOption {
	return func(c *runConfig) *runConfig {
		c.grace = d
		return c
	}
}

// WithLogSink receives every streamed log entry during the run.
func WithLogSink(sink func(logs.Entry)) RunOption {
	return func(c *runConfig) *runConfig {
		c.logSink = sink
		return c
	}
}

// WithProgress receives object-creation progress messages.
func WithProgress(sink ProgressSink) RunOption {
	return func(c *runConfig) *runConfig {
		c.progress = sink
		return c
	}
}

func newRunConfig(options []RunOption) runConfig {
	c := utils.ApplyAll(&runConfig{grace: DefaultLogGrace}, options...)
	return *c
}

// Run drives the app through one full lifecycle: acquire an application
// identity, create all registered objects, publish the object map, execute
// body while RUNNING, then disconnect and reset.
//
// Disconnect and the state reset happen on every exit path, body failures
// included.
func (a *App) Run(ctx context.Context, client api.Client, body Body, options ...RunOption) error {
	return a.run(ctx, client, "", "", body, newRunConfig(options))
}

// RunForever runs the app with an idle workload until ctx is cancelled.
func (a *App) RunForever(ctx context.Context, client api.Client, options ...RunOption) error {
	return a.Run(ctx, client, func(ctx context.Context, _ *App) error {
		<-ctx.Done()
		return nil
	}, options...)
}

// Deploy binds this app to a durable deployment name.
//
// An existing deployment under the same name seeds the run with its
// application identity and per-tag identities, so redeploying is idempotent:
// unchanged tags keep their identities. The final application identity is
// returned.
func (a *App) Deploy(ctx context.Context, client api.Client, name string, namespace object.Namespace, options ...RunOption) (string, error) {
	if a.state != StateNone {
		return "", fmt.Errorf("%w: can only deploy an app that isn't running (state: %s)", ErrInvalid, a.state)
	}

	if name == "" {
		name = a.name
	}
	if name == "" {
		return "", fmt.Errorf(
			"%w: a deployment needs a name: pass one to Deploy, or construct the app with app.New(app.WithName(...))",
			ErrInvalid,
		)
	}
	a.deploymentName = name

	dep, err := client.GetDeployment(ctx, name, namespace.String())
	if err != nil {
		return "", err
	}

	publish := func(ctx context.Context, a *App) error {
		return client.Deploy(ctx, a.appID, name, namespace.String())
	}
	if err := a.run(ctx, client, dep.AppID, dep.LastLogCursor, publish, newRunConfig(options)); err != nil {
		return "", err
	}
	return a.appID, nil
}

func (a *App) run(
	ctx context.Context,
	client api.Client,
	existingAppID string,
	lastLogCursor string,
	body Body,
	cfg runConfig,
) (retErr error) {
	if a.state != StateNone {
		return fmt.Errorf("%w: can't start an app that's already in state %s", ErrInvalid, a.state)
	}
	a.state = StateStarting
	a.client = client

	// The app value is reusable: whatever happens below, it ends back at
	// an empty NONE state.
	defer func() {
		a.client = nil
		a.state = StateNone
		a.tagToExisting = map[string]string{}
		a.tagToLive = map[string]object.Handle{}
	}()

	if existingAppID != "" {
		om, err := client.GetObjects(ctx, existingAppID)
		if err != nil {
			return err
		}
		a.tagToExisting = om.ObjectIDs
		a.appID = existingAppID
	} else {
		detail, err := client.CreateApp(ctx, a.Name())
		if err != nil {
			return err
		}
		a.tagToExisting = map[string]string{}
		a.appID = detail.AppID
	}

	tg := taskgroup.New(ctx)
	tg.Go(func(ctx context.Context) error {
		a.streamLogs(ctx, lastLogCursor, cfg.logSink)
		return nil
	})

	defer func() {
		// Disconnecting lets the server kill still-running tasks and
		// drain the log stream; it must happen even when ctx is already
		// cancelled.
		if err := client.Disconnect(context.WithoutCancel(ctx), a.appID); err != nil && retErr == nil {
			retErr = err
		}
		if err := tg.Close(cfg.grace); err != nil && retErr == nil {
			retErr = err
		}
	}()

	if err := a.createAllObjects(ctx, cfg.progress); err != nil {
		return err
	}

	objectIDs := make(map[string]string, len(a.tagToLive))
	for tag, h := range a.tagToLive {
		objectIDs[tag] = h.ID()
	}
	if err := client.SetObjects(ctx, a.appID, objectIDs); err != nil {
		return err
	}

	a.state = StateRunning
	if body != nil {
		if err := body(ctx, a); err != nil {
			a.state = StateStopping
			return err
		}
	}
	a.state = StateStopping
	return nil
}

// createAllObjects creates every registered spec, non-functions first.
//
// Functions are the only specs that depend on other objects, so creating
// everything else first guarantees all dependencies have identities by the
// time a function's manifest is built. This substitutes for a full
// topological sort.
func (a *App) createAllObjects(ctx context.Context, progress ProgressSink) error {
	tags := make([]string, 0, a.blueprint.Len())
	for tag := range a.blueprint.All() {
		tags = append(tags, tag)
	}
	isFunction := func(tag string) bool {
		spec, _ := a.blueprint.Get(tag)
		return spec.Kind().IsFunction()
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return !isFunction(tags[i]) && isFunction(tags[j])
	})

	for _, tag := range tags {
		spec, _ := a.blueprint.Get(tag)
		existingID := a.tagToExisting[tag]
		a.logger.Printf("creating object %q (existing id: %q)", tag, existingID)

		id, err := a.createObject(ctx, tag, spec, existingID, progress)
		if err != nil {
			return err
		}
		a.tagToLive[tag] = object.NewHandle(id, a)
	}
	return nil
}

func (a *App) createObject(
	ctx context.Context,
	tag string,
	spec object.Spec,
	existingID string,
	progress ProgressSink,
) (string, error) {
	if progress != nil {
		progress.Creating(tag, spec.CreatingMessage())
	}

	var id string
	if ref, ok := spec.(*object.Ref); ok {
		// A reference occupies the tag but resolves to an existing object
		// instead of creating one.
		resolved, err := a.Resolve(ctx, *ref)
		if err != nil {
			return "", err
		}
		id = resolved
	} else {
		manifest, err := spec.Manifest(ctx, a)
		if err != nil {
			return "", err
		}

		created, err := a.client.CreateObject(ctx, a.appID, manifest, existingID)
		if err != nil {
			return "", err
		}
		if existingID != "" && created != existingID && !spec.Kind().ContentAddressed() {
			return "", fmt.Errorf(
				"%w: tried creating object %q with existing id %s but it has id %s",
				ErrInconsistent, tag, existingID, created,
			)
		}
		id = created
	}

	if id == "" {
		return "", fmt.Errorf("%w: object %q (kind %s) was created with no identity", ErrInconsistent, tag, spec.Kind())
	}

	if progress != nil {
		progress.Created(tag, spec.CreatedMessage())
	}
	return id, nil
}

// streamLogs forwards the application log stream to sink until the server
// closes it or ctx is cancelled. Failures are logged, not escalated: losing
// log lines must not abort the run.
func (a *App) streamLogs(ctx context.Context, cursor string, sink func(logs.Entry)) {
	rc, err := a.client.Logs(ctx, a.appID, cursor, true)
	if err != nil {
		a.logger.Printf("log streaming unavailable: %s", err)
		return
	}
	defer rc.Close()

	go func() {
		// unblock the decoder when the grace period expires
		<-ctx.Done()
		rc.Close()
	}()

	dec := json.NewDecoder(rc)
	for {
		var entry logs.Entry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			a.logger.Printf("log streaming interrupted: %s", err)
			return
		}
		if sink != nil {
			sink(entry)
		}
	}
}
