package object_test

import (
	"testing"

	"github.com/outpost-run/outpost/pkg/object"
)

func TestRef(t *testing.T) {
	t.Run("a local ref names only a label and is not cross-app", func(t *testing.T) {
		ref := object.LocalRef("creds")
		if ref.IsCrossApp() {
			t.Error("a local ref is not cross-app")
		}
		if ref.String() != "creds" {
			t.Errorf("unexpected repr: %q", ref.String())
		}
	})

	t.Run("a named ref renders app and label", func(t *testing.T) {
		ref := object.NamedRef("model-registry", "weights")
		if !ref.IsCrossApp() {
			t.Error("a named ref is cross-app")
		}
		if ref.String() != "model-registry.weights" {
			t.Errorf("unexpected repr: %q", ref.String())
		}
	})

	t.Run("a global ref renders its namespace", func(t *testing.T) {
		ref := object.GlobalRef("outpost-runtime-mount")
		if ref.String() != "outpost-runtime-mount (namespace global)" {
			t.Errorf("unexpected repr: %q", ref.String())
		}
	})

	t.Run("a ref has no manifest", func(t *testing.T) {
		ref := object.LocalRef("creds")
		if _, err := ref.Manifest(nil, nil); err == nil {
			t.Error("a ref should refuse to produce a manifest")
		}
	})
}

func TestNamespace(t *testing.T) {
	t.Run("the zero namespace reads as account", func(t *testing.T) {
		var ns object.Namespace
		if ns.String() != "account" {
			t.Errorf("unexpected namespace: %q", ns.String())
		}
	})
}

func TestKind(t *testing.T) {
	t.Run("only images are content-addressed", func(t *testing.T) {
		if !object.KindImage.ContentAddressed() {
			t.Error("images are content-addressed")
		}
		for _, k := range []object.Kind{
			object.KindFunction, object.KindSecret, object.KindMount,
			object.KindSchedule, object.KindQueue, object.KindReference,
		} {
			if k.ContentAddressed() {
				t.Errorf("%s should not be content-addressed", k)
			}
		}
	})
}
