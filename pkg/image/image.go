// Package image defines container image specifications.
//
// Images are content-addressed server-side: their identity is the hash of
// their content, so it cannot be pinned across redeploys.
package image

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
)

const debianSlimReference = "index.docker.io/library/debian:bookworm-slim"

type Image struct {
	reference name.Reference
}

var _ object.Spec = &Image{}

// FromRegistry declares an image pulled from a registry.
//
// The reference is validated and normalized (default registry and tag
// applied) at declaration time, so a typo fails before any run starts.
func FromRegistry(reference string) (*Image, error) {
	ref, err := name.ParseReference(reference)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", reference, err)
	}
	return &Image{reference: ref}, nil
}

// DebianSlim is the default base image registered when a function declares
// no image of its own.
func DebianSlim() *Image {
	return &Image{reference: name.MustParseReference(debianSlimReference)}
}

// Reference is the normalized image reference.
func (i *Image) Reference() string {
	return i.reference.Name()
}

func (i *Image) Kind() object.Kind {
	return object.KindImage
}

func (i *Image) CreatingMessage() string {
	return fmt.Sprintf("Building image %s...", i.reference)
}

func (i *Image) CreatedMessage() string {
	return fmt.Sprintf("Built image %s.", i.reference)
}

func (i *Image) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	return objects.Manifest{
		Kind:  string(object.KindImage),
		Image: &objects.Image{Reference: i.reference.Name()},
	}, nil
}
