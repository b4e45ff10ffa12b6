package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"counsellor-console/logger"
)

// Client talks to the CRM REST API. Every screen of the console is a thin layer over it.
type Client struct {
	baseUrl    string
	token      string
	httpClient *http.Client
}

func NewClient(baseUrl, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the CRM answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("crm status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("crm status %d", e.StatusCode)
}

// RejectedError is returned when a 2xx response carries success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "crm rejected the request"
	}
	return "crm rejected the request: " + e.Message
}

// DecodeError means the response did not have the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	endpoint := c.baseUrl + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}
	logger.Debug("crm %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(respBody, &eb); err == nil {
			msg := eb.Message
			if msg == "" {
				msg = eb.Error
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return respBody, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	return c.do(ctx, method, path, nil, payload)
}

func pathID(id fmt.Stringer) string {
	return url.PathEscape(id.String())
}
