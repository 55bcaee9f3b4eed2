package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierr "github.com/outpost-run/outpost/pkg/api/types/errors"
)

type StatusCodeRange int

const (
	Status2xx StatusCodeRange = iota
	Status4xx
	Status5xx
	StatusUnknown
)

func (s StatusCodeRange) String() string {
	switch s {
	case Status2xx:
		return "ok"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return "unexpected status"
	}
}

func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	switch {
	case resp.StatusCode < 300:
		return Status2xx
	case 400 <= resp.StatusCode && resp.StatusCode < 500:
		return Status4xx
	case 500 <= resp.StatusCode && resp.StatusCode < 600:
		return Status5xx
	default:
		return StatusUnknown
	}
}

type MessageFor map[StatusCodeRange]string

// unmarshal http response which has json content.
//
// return error if the response body cannot be read, is not shaped of v, or
// the status code is in 4xx or 5xx.
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	if scr <= Status2xx {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("unexpected error: %s (status code = %d)", err.Error(), resp.StatusCode)
		}
		return nil
	}

	return errorFromResponse(resp, scr, messageFor)
}

// like unmarshalJsonResponse, but hands the raw body stream to the caller on
// success. The caller owns closing it.
func unmarshalStreamResponse(resp *http.Response, messageFor MessageFor) (io.ReadCloser, error) {
	scr := StatusCodeRangeOf(resp)
	if scr <= Status2xx {
		return resp.Body, nil
	}

	return nil, errorFromResponse(resp, scr, messageFor)
}

func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor) error {
	rc, err := unmarshalStreamResponse(resp, messageFor)
	if rc != nil {
		io.ReadAll(rc)
		rc.Close()
	}
	return err
}

func errorFromResponse(resp *http.Response, scr StatusCodeRange, messageFor MessageFor) error {
	message, ok := messageFor[scr]
	if !ok {
		message = scr.String()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s\ncannot read server message: %w", message, err)
	}

	var eresp apierr.ErrorResponse
	if err := json.Unmarshal(body, &eresp); err == nil && eresp.Message.Reason != "" {
		return fmt.Errorf("%s\n%s", message, eresp.Message.String())
	}

	return fmt.Errorf("%s\n%s", message, string(body))
}
