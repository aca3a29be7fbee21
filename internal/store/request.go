package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const contentType = "application/json"

// formFile is a file part of a multipart request.
type formFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := strings.TrimRight(c.APIURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	data, err := c.do(ctx, http.MethodGet, path, q, nil, "")
	if err != nil {
		return err
	}

	return decode(data, target)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, target any) error {
	var body io.Reader
	ct := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		ct = contentType
	}

	data, err := c.do(ctx, method, path, nil, body, ct)
	if err != nil {
		return err
	}

	return decode(data, target)
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, file formFile, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile(file.Field, file.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return err
	}

	for key, val := range fields {
		if val == "" {
			continue
		}
		field, err := w.CreateFormField(key)
		if err != nil {
			return err
		}
		if _, err := io.Copy(field, strings.NewReader(val)); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	data, err := c.do(ctx, http.MethodPost, path, nil, &b, w.FormDataContentType())
	if err != nil {
		return err
	}

	return decode(data, target)
}

// do sends the request and returns the body of a 2xx answer. Any other
// status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, ct string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(method, path, resp, data)
		c.logger.Debug("bad response",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return nil, apiErr
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("X-Request-ID", c.newRequestID())

	return req
}

func escape(id string) string {
	return url.PathEscape(id)
}
