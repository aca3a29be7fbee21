package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/cv-ranker/internal/utils"
)

var (
	// ErrNotFound matches any 404 answer from the API.
	ErrNotFound = errors.New("not found")
	// ErrProvider marks a failed evaluation request.
	ErrProvider = errors.New("scoring provider failure")
)

const maxDetailLength = 300

// APIError is a non-2xx answer from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	// Detail is the "detail" field of the error body, or the raw body when it is not JSON.
	Detail string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: bad status: %s", e.Method, e.Path, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func newAPIError(method, path string, resp *http.Response, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Detail:     parseDetail(body),
	}
}

func parseDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Detail == nil {
		return utils.TruncateForLog(string(body), maxDetailLength)
	}

	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		// validation errors come as a list of objects with "msg"
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok {
					msgs = append(msgs, s)
					continue
				}
			}
			msgs = append(msgs, fmt.Sprint(item))
		}
		return strings.Join(msgs, "; ")
	default:
		raw, _ := json.Marshal(d)
		return string(raw)
	}
}
