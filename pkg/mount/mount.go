// Package mount defines file mount specifications.
package mount

import (
	"context"
	"fmt"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
)

// RuntimeMountName is the globally published deployment carrying the Outpost
// runtime support files. Every function gets it mounted so the remote worker
// can bootstrap.
const RuntimeMountName = "outpost-runtime-mount"

// RuntimeRef points at the shared runtime support mount.
func RuntimeRef() *object.Ref {
	return object.GlobalRef(RuntimeMountName)
}

type Mount struct {
	localPath  string
	remotePath string
}

var _ object.Spec = &Mount{}

// New declares a mount shipping localPath to remotePath in the worker.
func New(localPath string, remotePath string) *Mount {
	return &Mount{localPath: localPath, remotePath: remotePath}
}

func (m *Mount) Kind() object.Kind {
	return object.KindMount
}

func (m *Mount) CreatingMessage() string {
	return fmt.Sprintf("Mounting %s...", m.localPath)
}

func (m *Mount) CreatedMessage() string {
	return fmt.Sprintf("Mounted %s at %s.", m.localPath, m.remotePath)
}

func (m *Mount) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	return objects.Manifest{
		Kind:  string(object.KindMount),
		Mount: &objects.Mount{LocalPath: m.localPath, RemotePath: m.remotePath},
	}, nil
}
