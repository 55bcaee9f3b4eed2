// Package object defines the declarative object model of an Outpost
// application: specifications of objects to be created remotely, references
// to objects not yet resolved, and handles to live remote objects.
package object

import (
	"context"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
)

// Kind names an object kind on the wire.
type Kind string

const (
	KindImage    Kind = "image"
	KindFunction Kind = "function"
	KindSecret   Kind = "secret"
	KindMount    Kind = "mount"
	KindSchedule Kind = "schedule"
	KindQueue    Kind = "queue"

	// KindReference marks a cross-app reference layered into a blueprint.
	// It is never created server-side; it resolves to an existing identity.
	KindReference Kind = "reference"
)

// ContentAddressed reports whether identities of this kind derive from the
// object's content hash rather than being assigned by the backend.
//
// For such kinds, redeploying cannot force a previous identity: a mismatch
// between the requested existing identity and the returned one is expected
// whenever the content changed.
func (k Kind) ContentAddressed() bool {
	return k == KindImage
}

// IsFunction reports whether objects of this kind may depend on other
// objects. The orchestrator creates all other kinds first.
func (k Kind) IsFunction() bool {
	return k == KindFunction
}

// Namespace scopes deployment names.
type Namespace string

const (
	// NamespaceAccount is the default namespace, scoped to one account.
	NamespaceAccount Namespace = "account"

	// NamespaceGlobal holds objects shared across accounts, like the
	// runtime support mount.
	NamespaceGlobal Namespace = "global"
)

func (n Namespace) String() string {
	if n == "" {
		return string(NamespaceAccount)
	}
	return string(n)
}

// Resolver resolves a Ref to a concrete remote identity.
//
// A running App is the Resolver a Spec sees while its manifest is built.
type Resolver interface {
	Resolve(ctx context.Context, ref Ref) (string, error)
}

// Spec is a declarative description of one remote object.
//
// Specs are immutable once registered in a blueprint; they may be shared
// freely between the blueprint and anything that captured them.
type Spec interface {
	Kind() Kind

	// CreatingMessage is a human-readable progress message shown while the
	// object is being created. Empty means no message.
	CreatingMessage() string

	// CreatedMessage is the matching completion message. Empty means no
	// message.
	CreatedMessage() string

	// Manifest produces the wire payload creating this object. Specs with
	// dependencies resolve them through res, so every dependency must
	// already have an identity when Manifest runs.
	Manifest(ctx context.Context, res Resolver) (objects.Manifest, error)
}

// Value is one object slot on an App: either a live Handle (the app is
// running and the tag is materialized) or an unresolved *Ref placeholder.
type Value interface {
	isValue()
}

func (Handle) isValue() {}
func (*Ref) isValue()   {}

// Handle is a live remote object: a concrete identity plus a back-reference
// to the resolver that owns it. The back-reference serves further lookups
// only; it does not keep the owner alive.
type Handle struct {
	id    string
	owner Resolver
}

func NewHandle(id string, owner Resolver) Handle {
	return Handle{id: id, owner: owner}
}

// ID is the opaque identity the backend assigned.
func (h Handle) ID() string {
	return h.id
}

func (h Handle) Owner() Resolver {
	return h.owner
}
