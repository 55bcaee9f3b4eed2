// Package secret defines environment-variable secret specifications.
package secret

import (
	"context"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
)

type Secret struct {
	env map[string]string
}

var _ object.Spec = &Secret{}

// New declares a secret holding the given environment variables.
//
// The map is copied; later mutation of env does not leak into the spec.
func New(env map[string]string) *Secret {
	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}
	return &Secret{env: copied}
}

func (s *Secret) Kind() object.Kind {
	return object.KindSecret
}

func (s *Secret) CreatingMessage() string {
	return "Creating secret..."
}

func (s *Secret) CreatedMessage() string {
	return "Created secret."
}

func (s *Secret) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	env := make(map[string]string, len(s.env))
	for k, v := range s.env {
		env[k] = v
	}
	return objects.Manifest{
		Kind:   string(object.KindSecret),
		Secret: &objects.Secret{Env: env},
	}, nil
}
