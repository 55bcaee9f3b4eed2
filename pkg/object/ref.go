package object

import (
	"context"
	"fmt"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
)

// Ref points at an object that has no concrete identity yet.
//
// With AppName set it names an object published by another deployment;
// without it, Label names a tag on the same application. A Ref with neither
// is malformed and rejected at resolution time.
type Ref struct {
	// AppName is the deployment publishing the object. Empty means "this
	// application".
	AppName string

	// Label is the tag within the application. For cross-app refs, empty
	// means the application's default object.
	Label string

	// Namespace scopes AppName. Zero value means NamespaceAccount.
	Namespace Namespace
}

// LocalRef points at a tag on the same application.
func LocalRef(label string) *Ref {
	return &Ref{Label: label}
}

// NamedRef points at an object published by another deployment.
func NamedRef(appName string, label string) *Ref {
	return &Ref{AppName: appName, Label: label}
}

// GlobalRef points at a globally shared deployment's default object.
func GlobalRef(appName string) *Ref {
	return &Ref{AppName: appName, Namespace: NamespaceGlobal}
}

// IsCrossApp reports whether the ref names another deployment.
func (r *Ref) IsCrossApp() bool {
	return r.AppName != ""
}

func (r *Ref) String() string {
	repr := r.AppName
	if r.Label != "" {
		if repr != "" {
			repr += "."
		}
		repr += r.Label
	}
	if r.Namespace != "" && r.Namespace != NamespaceAccount {
		repr += fmt.Sprintf(" (namespace %s)", r.Namespace)
	}
	return repr
}

// Ref is registrable in a blueprint so that shared remote objects (e.g. the
// runtime support mount) occupy a tag like any other spec.

var _ Spec = &Ref{}

func (r *Ref) Kind() Kind {
	return KindReference
}

func (r *Ref) CreatingMessage() string {
	return ""
}

func (r *Ref) CreatedMessage() string {
	return ""
}

func (r *Ref) Manifest(ctx context.Context, res Resolver) (objects.Manifest, error) {
	return objects.Manifest{}, fmt.Errorf("a reference (%s) has no manifest; it resolves to an existing object", r)
}
