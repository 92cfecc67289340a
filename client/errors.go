package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned for 401 responses, usually an invalid or
	// missing ETM_API_TOKEN.
	ErrUnauthorized = errors.New("etm: invalid or missing API token")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("etm: not found")
)

// APIError carries a non-2xx engine response.
type APIError struct {
	Status   int
	Body     string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("etm: HTTP %d: %s", e.Status, strings.Join(e.Messages, "; "))
	}
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "…"
	}
	return fmt.Sprintf("etm: HTTP %d: %s", e.Status, body)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	}
	return nil
}

// newAPIError parses engine error messages from a response body. The engine
// reports validation failures as {"errors": [...]} or {"errors": {field:
// [...]}} on 422 responses.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: string(body)}

	var withList struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &withList); err == nil && len(withList.Errors) > 0 {
		apiErr.Messages = withList.Errors
		return apiErr
	}

	var withMap struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &withMap); err == nil && len(withMap.Errors) > 0 {
		for field, msgs := range withMap.Errors {
			for _, msg := range msgs {
				apiErr.Messages = append(apiErr.Messages, field+": "+msg)
			}
		}
	}
	return apiErr
}
