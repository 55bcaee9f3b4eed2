// Package function builds function specifications: remotely invokable
// entrypoints with an attached image, secrets, mounts, and optionally a
// schedule or webhook configuration.
//
// Functions are the only object kind that depends on other objects. All
// dependencies are expressed as references, resolved to identities when the
// function's manifest is built; the orchestrator guarantees every dependency
// is created first.
package function

import (
	"context"
	"time"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/utils"
	"k8s.io/apimachinery/pkg/api/resource"
)

type RateLimit struct {
	Limit  int
	Window time.Duration
}

type Webhook struct {
	Method          string
	WaitForResponse bool
}

// Config enumerates everything attachable to a function. Zero value means
// "not set"; defaults are supplied by the registering App.
type Config struct {
	// Image runs the function's container. Nil selects the App's default
	// base image.
	Image *object.Ref

	Secrets  []*object.Ref
	Mounts   []*object.Ref
	Schedule object.Spec

	GPU        bool
	RateLimit  *RateLimit
	Resources  map[string]resource.Quantity
	Serialized bool
	Generator  bool
	Webhook    *Webhook
}

type Option func(*Config) *Config

func WithImage(ref *object.Ref) Option {
	return func(c *Config) *Config {
		c.Image = ref
		return c
	}
}

func WithSecret(refs ...*object.Ref) Option {
	return func(c *Config) *Config {
		c.Secrets = append(c.Secrets, refs...)
		return c
	}
}

func WithMount(refs ...*object.Ref) Option {
	return func(c *Config) *Config {
		c.Mounts = append(c.Mounts, refs...)
		return c
	}
}

// WithSchedule attaches a schedule spec. The registering App registers it as
// an object of its own, tagged after the function.
func WithSchedule(s object.Spec) Option {
	return func(c *Config) *Config {
		c.Schedule = s
		return c
	}
}

func WithGPU() Option {
	return func(c *Config) *Config {
		c.GPU = true
		return c
	}
}

func WithRateLimit(limit int, window time.Duration) Option {
	return func(c *Config) *Config {
		c.RateLimit = &RateLimit{Limit: limit, Window: window}
		return c
	}
}

// WithResources requests compute resources, e.g. {"cpu": 500m, "memory": 1Gi}.
func WithResources(res map[string]resource.Quantity) Option {
	return func(c *Config) *Config {
		if c.Resources == nil {
			c.Resources = map[string]resource.Quantity{}
		}
		for k, v := range res {
			c.Resources[k] = v
		}
		return c
	}
}

// Serialized ships the entrypoint to the worker through the serialization
// codec instead of importing it by name.
func Serialized() Option {
	return func(c *Config) *Config {
		c.Serialized = true
		return c
	}
}

// AsGenerator marks the function as yielding a stream of results.
func AsGenerator() Option {
	return func(c *Config) *Config {
		c.Generator = true
		return c
	}
}

// AsWebhook exposes the function as an HTTP endpoint.
func AsWebhook(method string, waitForResponse bool) Option {
	return func(c *Config) *Config {
		c.Webhook = &Webhook{Method: method, WaitForResponse: waitForResponse}
		return c
	}
}

func NewConfig(options ...Option) Config {
	c := utils.ApplyAll(&Config{}, options...)
	return *c
}

// Function is a finalized function specification. All dependencies are
// references; construction is done by the registering App, which fills in
// defaults (base image, runtime mount) before calling New.
type Function struct {
	name        string
	image       *object.Ref
	secrets     []*object.Ref
	mounts      []*object.Ref
	scheduleRef *object.Ref
	config      Config
}

var _ object.Spec = &Function{}

func New(
	name string,
	image *object.Ref,
	secrets []*object.Ref,
	mounts []*object.Ref,
	scheduleRef *object.Ref,
	config Config,
) *Function {
	return &Function{
		name:        name,
		image:       image,
		secrets:     secrets,
		mounts:      mounts,
		scheduleRef: scheduleRef,
		config:      config,
	}
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Kind() object.Kind {
	return object.KindFunction
}

func (f *Function) CreatingMessage() string {
	return "Creating function " + f.name + "..."
}

func (f *Function) CreatedMessage() string {
	return "Created function " + f.name + "."
}

func (f *Function) Manifest(ctx context.Context, res object.Resolver) (objects.Manifest, error) {
	imageID, err := res.Resolve(ctx, *f.image)
	if err != nil {
		return objects.Manifest{}, err
	}

	secretIDs := make([]string, 0, len(f.secrets))
	for _, ref := range f.secrets {
		id, err := res.Resolve(ctx, *ref)
		if err != nil {
			return objects.Manifest{}, err
		}
		secretIDs = append(secretIDs, id)
	}

	mountIDs := make([]string, 0, len(f.mounts))
	for _, ref := range f.mounts {
		id, err := res.Resolve(ctx, *ref)
		if err != nil {
			return objects.Manifest{}, err
		}
		mountIDs = append(mountIDs, id)
	}

	scheduleID := ""
	if f.scheduleRef != nil {
		id, err := res.Resolve(ctx, *f.scheduleRef)
		if err != nil {
			return objects.Manifest{}, err
		}
		scheduleID = id
	}

	wire := &objects.Function{
		Name:       f.name,
		ImageID:    imageID,
		SecretIDs:  secretIDs,
		MountIDs:   mountIDs,
		ScheduleID: scheduleID,
		GPU:        f.config.GPU,
		Generator:  f.config.Generator,
		Serialized: f.config.Serialized,
	}
	if rl := f.config.RateLimit; rl != nil {
		wire.RateLimit = &objects.RateLimit{Limit: rl.Limit, Window: rl.Window.String()}
	}
	if len(f.config.Resources) != 0 {
		wire.Resources = map[string]string{}
		for k, q := range f.config.Resources {
			wire.Resources[k] = q.String()
		}
	}
	if wh := f.config.Webhook; wh != nil {
		wire.Webhook = &objects.WebhookConfig{
			Method:          wh.Method,
			WaitForResponse: wh.WaitForResponse,
		}
	}

	return objects.Manifest{
		Kind:     string(object.KindFunction),
		Function: wire,
	}, nil
}
