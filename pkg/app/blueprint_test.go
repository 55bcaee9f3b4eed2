package app_test

import (
	"errors"
	"testing"

	"github.com/outpost-run/outpost/pkg/app"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/secret"
	"github.com/outpost-run/outpost/pkg/utils/cmp"
)

func TestBlueprint_Register(t *testing.T) {
	t.Run("when specs are registered, it iterates them in registration order", func(t *testing.T) {
		bp := app.NewBlueprint()
		for _, tag := range []string{"c", "a", "b"} {
			if err := bp.Register(tag, secret.New(nil)); err != nil {
				t.Fatal(err)
			}
		}

		actual := []string{}
		for tag := range bp.All() {
			actual = append(actual, tag)
		}
		if !cmp.SliceEq(actual, []string{"c", "a", "b"}) {
			t.Errorf("unexpected iteration order: %v", actual)
		}
		if bp.Len() != 3 {
			t.Errorf("unexpected length: %d", bp.Len())
		}
	})

	t.Run("when a tag is registered twice, it returns ErrConflict", func(t *testing.T) {
		bp := app.NewBlueprint()
		if err := bp.Register("dup", secret.New(nil)); err != nil {
			t.Fatal(err)
		}

		err := bp.Register("dup", secret.New(nil))
		if !errors.Is(err, app.ErrConflict) {
			t.Errorf("expected ErrConflict, got: %v", err)
		}
	})

	t.Run("when a cross-app reference is layered over a registered tag, it replaces the spec", func(t *testing.T) {
		bp := app.NewBlueprint()
		if err := bp.Register("base", secret.New(nil)); err != nil {
			t.Fatal(err)
		}

		ref := object.NamedRef("shared-infra", "base")
		if err := bp.Register("base", ref); err != nil {
			t.Fatal(err)
		}

		spec, ok := bp.Get("base")
		if !ok {
			t.Fatal("tag should stay registered")
		}
		if spec != object.Spec(ref) {
			t.Errorf("expected the reference to replace the spec, got: %+v", spec)
		}
		if bp.Len() != 1 {
			t.Errorf("replacement should not grow the blueprint: %d", bp.Len())
		}
	})

	t.Run("when a same-app reference hits a registered tag, it returns ErrConflict", func(t *testing.T) {
		bp := app.NewBlueprint()
		if err := bp.Register("base", secret.New(nil)); err != nil {
			t.Fatal(err)
		}

		err := bp.Register("base", object.LocalRef("other"))
		if !errors.Is(err, app.ErrConflict) {
			t.Errorf("expected ErrConflict, got: %v", err)
		}
	})
}
