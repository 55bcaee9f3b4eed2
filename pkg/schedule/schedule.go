// Package schedule defines schedule specifications for periodic function
// invocation.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
)

type Schedule struct {
	period time.Duration
	cron   string
}

var _ object.Spec = &Schedule{}

// Period declares a schedule firing every d.
func Period(d time.Duration) *Schedule {
	return &Schedule{period: d}
}

// Cron declares a schedule from a cron expression.
func Cron(expr string) *Schedule {
	return &Schedule{cron: expr}
}

func (s *Schedule) Kind() object.Kind {
	return object.KindSchedule
}

func (s *Schedule) CreatingMessage() string {
	return ""
}

func (s *Schedule) CreatedMessage() string {
	return ""
}

func (s *Schedule) String() string {
	if s.cron != "" {
		return fmt.Sprintf("cron(%s)", s.cron)
	}
	return fmt.Sprintf("every %s", s.period)
}

func (s *Schedule) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	m := objects.Manifest{
		Kind:     string(object.KindSchedule),
		Schedule: &objects.Schedule{},
	}
	if s.cron != "" {
		m.Schedule.Cron = s.cron
	} else {
		m.Schedule.Period = s.period.String()
	}
	return m, nil
}
