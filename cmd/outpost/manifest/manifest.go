// Package manifest loads a declarative application manifest and builds the
// app it describes.
//
// The manifest is the CLI's way into the same registration front-end that Go
// programs use directly: every entry becomes a blueprint registration.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"time"

	yaml "gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/outpost-run/outpost/pkg/app"
	"github.com/outpost-run/outpost/pkg/function"
	"github.com/outpost-run/outpost/pkg/image"
	"github.com/outpost-run/outpost/pkg/mount"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/queue"
	"github.com/outpost-run/outpost/pkg/schedule"
	"github.com/outpost-run/outpost/pkg/secret"
)

type Manifest struct {
	Name string `yaml:"name"`

	Images   map[string]ImageSpec   `yaml:"images,omitempty"`
	Secrets  map[string]SecretSpec  `yaml:"secrets,omitempty"`
	Mounts   map[string]MountSpec   `yaml:"mounts,omitempty"`
	Queues   map[string]struct{}    `yaml:"queues,omitempty"`
	Includes map[string]IncludeSpec `yaml:"includes,omitempty"`

	Functions map[string]FunctionSpec `yaml:"functions,omitempty"`
}

type ImageSpec struct {
	Registry string `yaml:"registry"`
}

type SecretSpec struct {
	Env map[string]string `yaml:"env"`
}

type MountSpec struct {
	LocalPath  string `yaml:"localPath"`
	RemotePath string `yaml:"remotePath"`
}

type IncludeSpec struct {
	App       string `yaml:"app"`
	Label     string `yaml:"label,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

type ScheduleSpec struct {
	Cron   string `yaml:"cron,omitempty"`
	Period string `yaml:"period,omitempty"`
}

type RateLimitSpec struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

type WebhookSpec struct {
	Method          string `yaml:"method"`
	WaitForResponse *bool  `yaml:"waitForResponse,omitempty"`
}

type FunctionSpec struct {
	Image     string            `yaml:"image,omitempty"`
	Secrets   []string          `yaml:"secrets,omitempty"`
	Mounts    []string          `yaml:"mounts,omitempty"`
	Schedule  *ScheduleSpec     `yaml:"schedule,omitempty"`
	GPU       bool              `yaml:"gpu,omitempty"`
	RateLimit *RateLimitSpec    `yaml:"rateLimit,omitempty"`
	Resources map[string]string `yaml:"resources,omitempty"`
	Generator bool              `yaml:"generator,omitempty"`
	Webhook   *WebhookSpec      `yaml:"webhook,omitempty"`
}

// Load reads a manifest file.
func Load(path string) (Manifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return Unmarshal(buf)
}

// Unmarshal a manifest from yaml in a byte array.
func Unmarshal(buf []byte) (Manifest, error) {
	m := Manifest{}
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Build registers everything the manifest declares on a fresh app.
func Build(m Manifest, options ...app.Option) (*app.App, error) {
	if m.Name != "" {
		options = append([]app.Option{app.WithName(m.Name)}, options...)
	}
	a := app.New(options...)

	// each section registers in tag order, so blueprints (and the progress
	// output they drive) come out the same on every invocation
	for _, tag := range sortedTags(m.Images) {
		img, err := image.FromRegistry(m.Images[tag].Registry)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", tag, err)
		}
		if err := a.Set(tag, img); err != nil {
			return nil, err
		}
	}
	for _, tag := range sortedTags(m.Secrets) {
		if err := a.Set(tag, secret.New(m.Secrets[tag].Env)); err != nil {
			return nil, err
		}
	}
	for _, tag := range sortedTags(m.Mounts) {
		spec := m.Mounts[tag]
		if err := a.Set(tag, mount.New(spec.LocalPath, spec.RemotePath)); err != nil {
			return nil, err
		}
	}
	for _, tag := range sortedTags(m.Queues) {
		if err := a.Set(tag, queue.New()); err != nil {
			return nil, err
		}
	}
	for _, tag := range sortedTags(m.Includes) {
		spec := m.Includes[tag]
		ref := &object.Ref{
			AppName:   spec.App,
			Label:     spec.Label,
			Namespace: object.Namespace(spec.Namespace),
		}
		if err := a.Set(tag, ref); err != nil {
			return nil, err
		}
	}

	for _, name := range sortedTags(m.Functions) {
		opts, err := functionOptions(name, m.Functions[name])
		if err != nil {
			return nil, err
		}
		if _, err := a.Function(name, opts...); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func sortedTags[T any](section map[string]T) []string {
	tags := make([]string, 0, len(section))
	for tag := range section {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func functionOptions(name string, spec FunctionSpec) ([]function.Option, error) {
	opts := []function.Option{}

	if spec.Image != "" {
		opts = append(opts, function.WithImage(object.LocalRef(spec.Image)))
	}
	for _, tag := range spec.Secrets {
		opts = append(opts, function.WithSecret(object.LocalRef(tag)))
	}
	for _, tag := range spec.Mounts {
		opts = append(opts, function.WithMount(object.LocalRef(tag)))
	}

	if s := spec.Schedule; s != nil {
		switch {
		case s.Cron != "" && s.Period != "":
			return nil, fmt.Errorf("function %q: schedule takes cron or period, not both", name)
		case s.Cron != "":
			opts = append(opts, function.WithSchedule(schedule.Cron(s.Cron)))
		case s.Period != "":
			d, err := time.ParseDuration(s.Period)
			if err != nil {
				return nil, fmt.Errorf("function %q: invalid schedule period: %w", name, err)
			}
			opts = append(opts, function.WithSchedule(schedule.Period(d)))
		default:
			return nil, fmt.Errorf("function %q: schedule needs cron or period", name)
		}
	}

	if spec.GPU {
		opts = append(opts, function.WithGPU())
	}
	if rl := spec.RateLimit; rl != nil {
		window, err := time.ParseDuration(rl.Window)
		if err != nil {
			return nil, fmt.Errorf("function %q: invalid rate limit window: %w", name, err)
		}
		opts = append(opts, function.WithRateLimit(rl.Limit, window))
	}
	if len(spec.Resources) != 0 {
		res := map[string]resource.Quantity{}
		for k, v := range spec.Resources {
			q, err := resource.ParseQuantity(v)
			if err != nil {
				return nil, fmt.Errorf("function %q: invalid resource %s=%s: %w", name, k, v, err)
			}
			res[k] = q
		}
		opts = append(opts, function.WithResources(res))
	}
	if spec.Generator {
		opts = append(opts, function.AsGenerator())
	}
	if wh := spec.Webhook; wh != nil {
		wait := true
		if wh.WaitForResponse != nil {
			wait = *wh.WaitForResponse
		}
		opts = append(opts, function.AsWebhook(wh.Method, wait))
	}

	return opts, nil
}
