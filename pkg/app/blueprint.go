package app

import (
	"fmt"
	"iter"

	"github.com/outpost-run/outpost/pkg/object"
)

// Blueprint is the registry of object specifications an App will create:
// an insertion-ordered mapping from tag to spec.
//
// Tags are never removed during a run.
type Blueprint struct {
	tags  []string
	specs map[string]object.Spec
}

func NewBlueprint() *Blueprint {
	return &Blueprint{
		tags:  []string{},
		specs: map[string]object.Spec{},
	}
}

// Register inserts spec under tag.
//
// A tag registered twice is an error, with one exception: a cross-app
// reference may be layered over an already-registered placeholder, replacing
// it. That keeps shared infrastructure tags (default image, runtime mount)
// overridable by published objects.
func (b *Blueprint) Register(tag string, spec object.Spec) error {
	if _, ok := b.specs[tag]; ok {
		ref, isRef := spec.(*object.Ref)
		if !isRef || !ref.IsCrossApp() {
			return fmt.Errorf("%w: tag %q is already registered", ErrConflict, tag)
		}
		b.specs[tag] = ref
		return nil
	}

	b.tags = append(b.tags, tag)
	b.specs[tag] = spec
	return nil
}

func (b *Blueprint) Has(tag string) bool {
	_, ok := b.specs[tag]
	return ok
}

func (b *Blueprint) Get(tag string) (object.Spec, bool) {
	spec, ok := b.specs[tag]
	return spec, ok
}

func (b *Blueprint) Len() int {
	return len(b.tags)
}

// All iterates (tag, spec) pairs in registration order.
func (b *Blueprint) All() iter.Seq2[string, object.Spec] {
	return func(yield func(string, object.Spec) bool) {
		for _, tag := range b.tags {
			if !yield(tag, b.specs[tag]) {
				break
			}
		}
	}
}
