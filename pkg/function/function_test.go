package function_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/outpost-run/outpost/pkg/function"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/utils/cmp"
	"github.com/outpost-run/outpost/pkg/utils/try"
)

// tableResolver resolves labels from a fixed table; cross-app refs resolve
// by app name.
type tableResolver map[string]string

func (r tableResolver) Resolve(ctx context.Context, ref object.Ref) (string, error) {
	key := ref.Label
	if ref.AppName != "" {
		key = ref.AppName
	}
	id, ok := r[key]
	if !ok {
		return "", fmt.Errorf("unknown ref: %s", &ref)
	}
	return id, nil
}

func TestFunction_Manifest(t *testing.T) {
	t.Run("when the function has dependencies, each resolves to an identity", func(t *testing.T) {
		cfg := function.NewConfig(
			function.WithGPU(),
			function.WithRateLimit(10, time.Minute),
			function.WithResources(map[string]resource.Quantity{
				"cpu":    resource.MustParse("500m"),
				"memory": resource.MustParse("1Gi"),
			}),
		)
		fn := function.New(
			"handler",
			object.LocalRef("base"),
			[]*object.Ref{object.LocalRef("creds")},
			[]*object.Ref{object.GlobalRef("outpost-runtime-mount"), object.LocalRef("data")},
			object.LocalRef("handler.schedule"),
			cfg,
		)

		res := tableResolver{
			"base":                  "image-1",
			"creds":                 "secret-1",
			"outpost-runtime-mount": "mount-0",
			"data":                  "mount-1",
			"handler.schedule":      "schedule-1",
		}
		m := try.To(fn.Manifest(context.Background(), res)).OrFatal(t)

		if m.Kind != "function" || m.Function == nil {
			t.Fatalf("unexpected manifest: %+v", m)
		}
		f := m.Function
		if f.Name != "handler" || f.ImageID != "image-1" || f.ScheduleID != "schedule-1" {
			t.Errorf("unexpected function wire: %+v", f)
		}
		if !cmp.SliceEq(f.SecretIDs, []string{"secret-1"}) {
			t.Errorf("unexpected secret ids: %v", f.SecretIDs)
		}
		if !cmp.SliceEq(f.MountIDs, []string{"mount-0", "mount-1"}) {
			t.Errorf("unexpected mount ids: %v", f.MountIDs)
		}
		if !f.GPU {
			t.Error("gpu should be requested")
		}
		if f.RateLimit == nil || f.RateLimit.Limit != 10 || f.RateLimit.Window != "1m0s" {
			t.Errorf("unexpected rate limit: %+v", f.RateLimit)
		}
		if !cmp.MapEq(f.Resources, map[string]string{"cpu": "500m", "memory": "1Gi"}) {
			t.Errorf("unexpected resources: %v", f.Resources)
		}
	})

	t.Run("when a dependency cannot resolve, the manifest fails", func(t *testing.T) {
		fn := function.New(
			"handler", object.LocalRef("base"), nil, nil, nil, function.NewConfig(),
		)
		if _, err := fn.Manifest(context.Background(), tableResolver{}); err == nil {
			t.Error("an unresolvable image should fail the manifest")
		}
	})

	t.Run("when the function is a webhook, the wire carries its config", func(t *testing.T) {
		cfg := function.NewConfig(function.AsWebhook("POST", true))
		fn := function.New(
			"hook", object.LocalRef("base"), nil, nil, nil, cfg,
		)
		m := try.To(fn.Manifest(context.Background(), tableResolver{"base": "image-1"})).OrFatal(t)
		wh := m.Function.Webhook
		if wh == nil || wh.Method != "POST" || !wh.WaitForResponse {
			t.Errorf("unexpected webhook config: %+v", wh)
		}
	})
}
