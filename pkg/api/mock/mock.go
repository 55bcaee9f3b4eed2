// Package mock provides a hand-rolled api.Client for tests.
//
// Each method delegates to the corresponding Impl field; calling a method
// whose Impl is unset fails the test. Calls records every invocation in
// order, so tests can assert on call sequences.
package mock

import (
	"context"
	"io"
	"testing"

	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/api/types/apps"
	"github.com/outpost-run/outpost/pkg/api/types/objects"
)

type CreateAppArgs struct {
	Name string
}

type GetDeploymentArgs struct {
	Name      string
	Namespace string
}

type GetObjectsArgs struct {
	AppID string
}

type CreateObjectArgs struct {
	AppID      string
	Manifest   objects.Manifest
	ExistingID string
}

type IncludeObjectArgs struct {
	AppID     string
	Name      string
	Label     string
	Namespace string
}

type SetObjectsArgs struct {
	AppID     string
	ObjectIDs map[string]string
}

type DeployArgs struct {
	AppID     string
	Name      string
	Namespace string
}

type DisconnectArgs struct {
	AppID string
}

type LogsArgs struct {
	AppID  string
	Cursor string
	Follow bool
}

func New(t *testing.T) *Client {
	return &Client{t: t}
}

type Client struct {
	t *testing.T

	Impl struct {
		CreateApp     func(ctx context.Context, name string) (apps.Detail, error)
		GetDeployment func(ctx context.Context, name string, namespace string) (apps.Deployment, error)
		GetObjects    func(ctx context.Context, appID string) (apps.ObjectMap, error)
		CreateObject  func(ctx context.Context, appID string, manifest objects.Manifest, existingID string) (string, error)
		IncludeObject func(ctx context.Context, appID string, name string, label string, namespace string) (string, error)
		SetObjects    func(ctx context.Context, appID string, objectIDs map[string]string) error
		Deploy        func(ctx context.Context, appID string, name string, namespace string) error
		Disconnect    func(ctx context.Context, appID string) error
		Logs          func(ctx context.Context, appID string, cursor string, follow bool) (io.ReadCloser, error)
	}

	Calls struct {
		CreateApp     []CreateAppArgs
		GetDeployment []GetDeploymentArgs
		GetObjects    []GetObjectsArgs
		CreateObject  []CreateObjectArgs
		IncludeObject []IncludeObjectArgs
		SetObjects    []SetObjectsArgs
		Deploy        []DeployArgs
		Disconnect    []DisconnectArgs
		Logs          []LogsArgs
	}
}

var _ api.Client = &Client{}

func (m *Client) CreateApp(ctx context.Context, name string) (apps.Detail, error) {
	m.t.Helper()
	m.Calls.CreateApp = append(m.Calls.CreateApp, CreateAppArgs{Name: name})
	if m.Impl.CreateApp == nil {
		m.t.Fatal("CreateApp: should not be called")
	}
	return m.Impl.CreateApp(ctx, name)
}

func (m *Client) GetDeployment(ctx context.Context, name string, namespace string) (apps.Deployment, error) {
	m.t.Helper()
	m.Calls.GetDeployment = append(m.Calls.GetDeployment, GetDeploymentArgs{Name: name, Namespace: namespace})
	if m.Impl.GetDeployment == nil {
		m.t.Fatal("GetDeployment: should not be called")
	}
	return m.Impl.GetDeployment(ctx, name, namespace)
}

func (m *Client) GetObjects(ctx context.Context, appID string) (apps.ObjectMap, error) {
	m.t.Helper()
	m.Calls.GetObjects = append(m.Calls.GetObjects, GetObjectsArgs{AppID: appID})
	if m.Impl.GetObjects == nil {
		m.t.Fatal("GetObjects: should not be called")
	}
	return m.Impl.GetObjects(ctx, appID)
}

func (m *Client) CreateObject(ctx context.Context, appID string, manifest objects.Manifest, existingID string) (string, error) {
	m.t.Helper()
	m.Calls.CreateObject = append(m.Calls.CreateObject, CreateObjectArgs{
		AppID: appID, Manifest: manifest, ExistingID: existingID,
	})
	if m.Impl.CreateObject == nil {
		m.t.Fatal("CreateObject: should not be called")
	}
	return m.Impl.CreateObject(ctx, appID, manifest, existingID)
}

func (m *Client) IncludeObject(ctx context.Context, appID string, name string, label string, namespace string) (string, error) {
	m.t.Helper()
	m.Calls.IncludeObject = append(m.Calls.IncludeObject, IncludeObjectArgs{
		AppID: appID, Name: name, Label: label, Namespace: namespace,
	})
	if m.Impl.IncludeObject == nil {
		m.t.Fatal("IncludeObject: should not be called")
	}
	return m.Impl.IncludeObject(ctx, appID, name, label, namespace)
}

func (m *Client) SetObjects(ctx context.Context, appID string, objectIDs map[string]string) error {
	m.t.Helper()
	m.Calls.SetObjects = append(m.Calls.SetObjects, SetObjectsArgs{AppID: appID, ObjectIDs: objectIDs})
	if m.Impl.SetObjects == nil {
		m.t.Fatal("SetObjects: should not be called")
	}
	return m.Impl.SetObjects(ctx, appID, objectIDs)
}

func (m *Client) Deploy(ctx context.Context, appID string, name string, namespace string) error {
	m.t.Helper()
	m.Calls.Deploy = append(m.Calls.Deploy, DeployArgs{AppID: appID, Name: name, Namespace: namespace})
	if m.Impl.Deploy == nil {
		m.t.Fatal("Deploy: should not be called")
	}
	return m.Impl.Deploy(ctx, appID, name, namespace)
}

func (m *Client) Disconnect(ctx context.Context, appID string) error {
	m.t.Helper()
	m.Calls.Disconnect = append(m.Calls.Disconnect, DisconnectArgs{AppID: appID})
	if m.Impl.Disconnect == nil {
		m.t.Fatal("Disconnect: should not be called")
	}
	return m.Impl.Disconnect(ctx, appID)
}

func (m *Client) Logs(ctx context.Context, appID string, cursor string, follow bool) (io.ReadCloser, error) {
	m.t.Helper()
	m.Calls.Logs = append(m.Calls.Logs, LogsArgs{AppID: appID, Cursor: cursor, Follow: follow})
	if m.Impl.Logs == nil {
		m.t.Fatal("Logs: should not be called")
	}
	return m.Impl.Logs(ctx, appID, cursor, follow)
}
