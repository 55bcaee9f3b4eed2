package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/outpost-run/outpost/pkg/api/types/objects"
)

func (c *client) CreateObject(
	ctx context.Context, appID string, manifest objects.Manifest, existingID string,
) (string, error) {
	body, err := json.Marshal(struct {
		Manifest   objects.Manifest `json:"manifest"`
		ExistingID string           `json:"existingId,omitempty"`
	}{Manifest: manifest, ExistingID: existingID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("apps", appID, "objects"), bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ObjectID string `json:"objectId"`
	}
	if err := unmarshalJsonResponse(
		resp, &result,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot create %s object in appId:%v", manifest.Kind, appID),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return "", err
	}
	return result.ObjectID, nil
}

func (c *client) IncludeObject(
	ctx context.Context, appID string, name string, label string, namespace string,
) (string, error) {
	body, err := json.Marshal(struct {
		Name      string `json:"name"`
		Label     string `json:"label,omitempty"`
		Namespace string `json:"namespace,omitempty"`
	}{Name: name, Label: label, Namespace: namespace})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("apps", appID, "include"), bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ObjectID string `json:"objectId"`
	}
	if err := unmarshalJsonResponse(
		resp, &result,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot include object from %q", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return "", err
	}

	// empty ObjectID means not-found; the resolver classifies it
	return result.ObjectID, nil
}
