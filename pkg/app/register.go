package app

import (
	"fmt"

	"github.com/outpost-run/outpost/pkg/function"
	"github.com/outpost-run/outpost/pkg/image"
	"github.com/outpost-run/outpost/pkg/mount"
	"github.com/outpost-run/outpost/pkg/object"
)

// Shared infrastructure tags. Registered idempotently: the first function
// needing them creates them, later functions reuse them.
const (
	defaultImageTag = "_image"
	runtimeMountTag = "_runtime_mount"
)

// Function registers a function specification under name and returns its
// proxy handle.
//
// Missing pieces get defaults: a function without an image uses the shared
// default base image, and every function gets the runtime support mount
// prepended to its mounts.
func (a *App) Function(name string, options ...function.Option) (*function.Proxy, error) {
	// checked before any side registration (default image, runtime mount,
	// schedule), so a conflicting name leaves the blueprint untouched
	if a.blueprint.Has(name) {
		return nil, fmt.Errorf("%w: tag %q is already registered", ErrConflict, name)
	}

	cfg := function.NewConfig(options...)

	img := cfg.Image
	if img == nil {
		if !a.blueprint.Has(defaultImageTag) {
			if err := a.blueprint.Register(defaultImageTag, image.DebianSlim()); err != nil {
				return nil, err
			}
		}
		img = object.LocalRef(defaultImageTag)
	}

	if !a.blueprint.Has(runtimeMountTag) {
		if err := a.blueprint.Register(runtimeMountTag, mount.RuntimeRef()); err != nil {
			return nil, err
		}
	}
	mounts := append([]*object.Ref{object.LocalRef(runtimeMountTag)}, cfg.Mounts...)

	var scheduleRef *object.Ref
	if cfg.Schedule != nil {
		scheduleTag := fmt.Sprintf("%s.schedule", name)
		if err := a.blueprint.Register(scheduleTag, cfg.Schedule); err != nil {
			return nil, err
		}
		scheduleRef = object.LocalRef(scheduleTag)
	}

	fn := function.New(name, img, cfg.Secrets, mounts, scheduleRef, cfg)
	if err := a.blueprint.Register(name, fn); err != nil {
		return nil, err
	}
	return function.NewProxy(fn, a, name), nil
}

// Generator registers a function yielding a stream of results.
func (a *App) Generator(name string, options ...function.Option) (*function.Proxy, error) {
	return a.Function(name, append(options, function.AsGenerator())...)
}

// Webhook registers a function exposed as an HTTP endpoint.
func (a *App) Webhook(name string, method string, options ...function.Option) (*function.Proxy, error) {
	return a.Function(name, append(options, function.AsWebhook(method, true))...)
}
