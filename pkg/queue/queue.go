// Package queue defines ephemeral queue specifications.
package queue

import (
	"context"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
)

type Queue struct{}

var _ object.Spec = &Queue{}

func New() *Queue {
	return &Queue{}
}

func (q *Queue) Kind() object.Kind {
	return object.KindQueue
}

func (q *Queue) CreatingMessage() string {
	return ""
}

func (q *Queue) CreatedMessage() string {
	return ""
}

func (q *Queue) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	return objects.Manifest{
		Kind:  string(object.KindQueue),
		Queue: &objects.Queue{},
	}, nil
}
