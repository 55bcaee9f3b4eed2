package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/outpost-run/outpost/pkg/api/types/apps"
)

func (c *client) CreateApp(ctx context.Context, name string) (apps.Detail, error) {
	body, err := json.Marshal(struct {
		Name string `json:"name,omitempty"`
	}{Name: name})
	if err != nil {
		return apps.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("apps"), bytes.NewReader(body),
	)
	if err != nil {
		return apps.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return apps.Detail{}, err
	}
	defer resp.Body.Close()

	var detail apps.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot create app %q", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apps.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetDeployment(ctx context.Context, name string, namespace string) (apps.Deployment, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("deployments", url.PathEscape(name)), nil,
	)
	if err != nil {
		return apps.Deployment{}, err
	}
	if namespace != "" {
		q := req.URL.Query()
		q.Add("namespace", namespace)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.do(req)
	if err != nil {
		return apps.Deployment{}, err
	}
	defer resp.Body.Close()

	var dep apps.Deployment
	if err := unmarshalJsonResponse(
		resp, &dep,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot look up deployment %q", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apps.Deployment{}, err
	}
	return dep, nil
}

func (c *client) GetObjects(ctx context.Context, appID string) (apps.ObjectMap, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("apps", appID, "objects"), nil,
	)
	if err != nil {
		return apps.ObjectMap{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return apps.ObjectMap{}, err
	}
	defer resp.Body.Close()

	var om apps.ObjectMap
	if err := unmarshalJsonResponse(
		resp, &om,
		MessageFor{
			Status4xx: fmt.Sprintf("appId:%v is not found", appID),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apps.ObjectMap{}, err
	}
	if om.ObjectIDs == nil {
		om.ObjectIDs = map[string]string{}
	}
	return om, nil
}

func (c *client) SetObjects(ctx context.Context, appID string, objectIDs map[string]string) error {
	body, err := json.Marshal(struct {
		ObjectIDs map[string]string `json:"objectIds"`
	}{ObjectIDs: objectIDs})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("apps", appID, "objects"), bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot publish objects of appId:%v", appID),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) Deploy(ctx context.Context, appID string, name string, namespace string) error {
	body, err := json.Marshal(struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace,omitempty"`
	}{Name: name, Namespace: namespace})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("apps", appID, "deploy"), bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot deploy appId:%v as %q", appID, name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) Disconnect(ctx context.Context, appID string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("apps", appID, "disconnect"), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot disconnect from appId:%v", appID),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}
