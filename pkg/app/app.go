// Package app is the lifecycle orchestrator of Outpost applications.
//
// An App owns a Blueprint of object specifications and drives them to live
// remote objects for the duration of one run or deploy: it acquires an
// application identity, creates every not-yet-existing object in dependency
// order, publishes the tag-to-identity map, runs the caller's workload while
// streaming logs, and tears everything down on exit.
package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/object"
	"github.com/outpost-run/outpost/pkg/utils"
)

type App struct {
	name           string
	appID          string
	deploymentName string
	state          State

	client    api.Client
	blueprint *Blueprint

	// tagToExisting holds identities from a prior deployment of the same
	// name, threaded into object creation so the backend can preserve them.
	tagToExisting map[string]string

	// tagToLive holds the objects materialized during the current run.
	tagToLive map[string]object.Handle

	logger *log.Logger
}

type Option func(*App) *App

// WithName names the application. Without it, a name is inferred from the
// invoking command line when a run needs one.
func WithName(name string) Option {
	return func(a *App) *App {
		a.name = name
		return a
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *App) *App {
		a.logger = l
		return a
	}
}

func New(options ...Option) *App {
	return utils.ApplyAll(
		&App{
			state:         StateNone,
			blueprint:     NewBlueprint(),
			tagToExisting: map[string]string{},
			tagToLive:     map[string]object.Handle{},
			logger:        log.New(io.Discard, "", log.LstdFlags),
		},
		options...,
	)
}

// ProvidedName is the name given at construction, if any.
func (a *App) ProvidedName() string {
	return a.name
}

// Name is the effective application name: the provided one, or one inferred
// from the invoking command line.
func (a *App) Name() string {
	if a.name != "" {
		return a.name
	}
	return inferredName()
}

func inferredName() string {
	args := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	return strings.Join(args, " ")
}

// AppID is the application identity assigned by the backend. Empty until a
// run or deploy has started.
func (a *App) AppID() string {
	return a.appID
}

// DeploymentName is set only during a deploy.
func (a *App) DeploymentName() string {
	return a.deploymentName
}

func (a *App) State() State {
	return a.state
}

func (a *App) Blueprint() *Blueprint {
	return a.blueprint
}

// Set registers spec under tag in the blueprint.
//
// A same-app reference cannot be registered: it would point the blueprint at
// itself. Cross-app references are fine; they occupy a tag resolving to an
// object published elsewhere.
func (a *App) Set(tag string, spec object.Spec) error {
	if ref, ok := spec.(*object.Ref); ok && !ref.IsCrossApp() {
		return fmt.Errorf("%w: cannot register a same-app reference on the blueprint", ErrInvalid)
	}
	return a.blueprint.Register(tag, spec)
}

// Get returns the slot registered under tag: the live handle while the app
// is running, or an unresolved local reference usable as a dependency of
// other specs before the run starts.
func (a *App) Get(tag string) object.Value {
	if a.state == StateRunning {
		// Inside a worker the container app is RUNNING for every lookup,
		// related or not; missing tags yield a zero handle rather than a
		// failure here.
		h := a.tagToLive[tag]
		return h
	}
	return object.LocalRef(tag)
}

// LiveObject returns the materialized object behind tag, if any.
func (a *App) LiveObject(tag string) (object.Handle, bool) {
	h, ok := a.tagToLive[tag]
	return h, ok
}
