package app

import (
	"context"
	"fmt"

	"github.com/outpost-run/outpost/pkg/object"
)

// Resolve turns a reference into a concrete remote identity.
//
// A reference with neither app name nor label is malformed (ErrInvalid).
// Cross-app references are resolved by the backend; a backend answer with no
// identity is ErrNotFound. Same-app references name a tag that must already
// be materialized: the creation ordering guarantees that, so a miss is a
// programming error and panics.
func (a *App) Resolve(ctx context.Context, ref object.Ref) (string, error) {
	if ref.AppName == "" && ref.Label == "" {
		return "", fmt.Errorf("%w: reference %s points at nothing: it needs an app name or a label", ErrInvalid, &ref)
	}

	if ref.AppName != "" {
		return a.includeRemote(ctx, ref.AppName, ref.Label, ref.Namespace)
	}

	h, ok := a.tagToLive[ref.Label]
	if !ok {
		panic(fmt.Sprintf(
			"object %q referenced before creation; only functions may depend on other objects",
			ref.Label,
		))
	}
	return h.ID(), nil
}

func (a *App) includeRemote(ctx context.Context, name string, label string, namespace object.Namespace) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("%w: cannot include %q without an active run", ErrInvalid, name)
	}

	id, err := a.client.IncludeObject(ctx, a.appID, name, label, namespace.String())
	if err != nil {
		return "", err
	}
	if id == "" {
		repr := (&object.Ref{AppName: name, Label: label, Namespace: namespace}).String()
		return "", fmt.Errorf("%w: could not find object %s", ErrNotFound, repr)
	}
	return id, nil
}

// Include looks up an object published by another deployment and returns a
// newly constructed handle, without registering anything in the blueprint.
func (a *App) Include(ctx context.Context, name string, label string, namespace object.Namespace) (object.Handle, error) {
	id, err := a.includeRemote(ctx, name, label, namespace)
	if err != nil {
		return object.Handle{}, err
	}
	return object.NewHandle(id, a), nil
}
