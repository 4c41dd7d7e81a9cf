// Package client is a typed SDK for the taskboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskboard/pkg/logging"

	"github.com/sony/gobreaker"
)

// DefaultBaseURL is used when TASKBOARD_API_URL is not set.
const DefaultBaseURL = "http://localhost:8000"

// genericFailure is shown when the server cannot be reached at all.
const genericFailure = "could not reach the server, please try again"

// APIError is a non-2xx answer from the server. Status 0 means the request
// never got an answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to one API server on behalf of one Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	session    *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if session == nil {
		session = NewMemorySession()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "taskboard-api",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// client errors are answers, not outages
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status > 0 && apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.For("client").Debugf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

type response struct {
	status int
	body   []byte
}

// do sends one request through the breaker. body may be nil; out may be nil.
// A 401 on an authenticated call ends the session.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = raw
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	token := c.session.AccessToken()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
		}
		return &response{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.Status == http.StatusUnauthorized && token != "" {
				_ = c.session.Clear()
			}
			return apiErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.For("client").Debugf("%s %s failed: %v", method, path, err)
		return &APIError{Message: genericFailure}
	}

	if out == nil {
		return nil
	}
	resp := result.(*response)
	if len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage prefers the server's {"error": "..."} payload.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "request failed"
}
