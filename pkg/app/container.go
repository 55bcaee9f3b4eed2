package app

import (
	"context"
	"sync"

	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/object"
)

// Exactly one App represents the current execution context when code runs
// inside a remote worker. It lives behind this explicit accessor; New()
// never observes or mutates it, so local construction stays unaffected.
var (
	containerMu  sync.Mutex
	containerApp *App
)

// InitContainerApp bootstraps the process-wide container app: it fetches
// the application's published objects and exposes them as live handles in a
// RUNNING app.
//
// Called once by the worker runtime, before user code executes.
func InitContainerApp(ctx context.Context, client api.Client, appID string, options ...Option) (*App, error) {
	a := New(options...)
	a.client = client
	a.appID = appID

	om, err := client.GetObjects(ctx, appID)
	if err != nil {
		return nil, err
	}
	for tag, id := range om.ObjectIDs {
		a.tagToLive[tag] = object.NewHandle(id, a)
	}

	// in the worker, the app runs for as long as the process does
	a.state = StateRunning

	containerMu.Lock()
	defer containerMu.Unlock()
	containerApp = a
	return a, nil
}

// FromContainer returns the container app, when running inside a worker.
func FromContainer() (*App, bool) {
	containerMu.Lock()
	defer containerMu.Unlock()
	return containerApp, containerApp != nil
}

// IsLocal reports whether this process runs outside any remote worker.
func IsLocal() bool {
	_, inside := FromContainer()
	return !inside
}
