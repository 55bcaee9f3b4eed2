package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

func (c *client) Logs(ctx context.Context, appID string, cursor string, follow bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("apps", appID, "logs"), nil,
	)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if cursor != "" {
		q.Add("cursor", cursor)
	}
	if follow {
		q.Add("follow", "true")
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get log of appId:%v", appID),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return r, nil
}
