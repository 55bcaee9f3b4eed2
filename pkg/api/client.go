// Package api is the HTTP client for the Outpost backend.
//
// Every remote operation the orchestrator consumes is one request/response
// call on the Client interface. The interface is narrow on purpose: the
// orchestrator treats the backend as opaque.
package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/outpost-run/outpost/pkg/api/types/apps"
	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/utils"
)

type Client interface {
	// CreateApp acquires a brand-new application identity.
	CreateApp(ctx context.Context, name string) (apps.Detail, error)

	// GetDeployment looks up an existing deployment by name and namespace.
	//
	// A name never deployed yields a Deployment with empty AppID, not an
	// error.
	GetDeployment(ctx context.Context, name string, namespace string) (apps.Deployment, error)

	// GetObjects fetches the current tag-to-identity map of an application,
	// with the last log cursor the backend retained.
	GetObjects(ctx context.Context, appID string) (apps.ObjectMap, error)

	// CreateObject creates one object server-side and returns its identity.
	//
	// When existingID is not empty, the backend attempts to preserve that
	// identity across redeploys. Identity-stable kinds keep it; content-
	// addressed kinds may return a different identity.
	CreateObject(ctx context.Context, appID string, manifest objects.Manifest, existingID string) (string, error)

	// IncludeObject resolves an object published by another deployment.
	//
	// An object the backend cannot find yields an empty identity, not an
	// error; the caller classifies that.
	IncludeObject(ctx context.Context, appID string, name string, label string, namespace string) (string, error)

	// SetObjects publishes the full tag-to-identity map of an application.
	SetObjects(ctx context.Context, appID string, objectIDs map[string]string) error

	// Deploy binds the application identity to a durable deployment name.
	Deploy(ctx context.Context, appID string, name string, namespace string) error

	// Disconnect tells the backend this client is going away, so it can
	// clean up running tasks and close the log stream.
	Disconnect(ctx context.Context, appID string) error

	// Logs opens the application log stream at the given cursor.
	//
	// The stream is newline-delimited JSON of logs.Entry. With follow, the
	// stream stays open until the server closes it (typically after
	// Disconnect).
	Logs(ctx context.Context, appID string, cursor string, follow bool) (io.ReadCloser, error)
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

type Option func(*client) error

// WithCA trusts an extra CA certificate, given as base64-encoded PEM.
func WithCA(b64cert string) Option {
	return func(c *client) error {
		hc, err := trustCa(c.httpclient, []string{b64cert})
		if err != nil {
			return err
		}
		c.httpclient = hc
		return nil
	}
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *client) error {
		c.token = token
		return nil
	}
}

// NewClient creates a Client for the backend at apiRoot.
func NewClient(apiRoot string, options ...Option) (Client, error) {
	c := &client{
		httpclient: new(http.Client),
		api:        strings.TrimSuffix(apiRoot, "/"),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpclient.Do(req)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
