// Package client talks to the workout summary HTTP API.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/fitsummary/internal/api"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workout api: %d %s: %s", e.Status, e.Type, e.Detail)
}

// Client posts sensor packages to the API.
type Client struct {
	http *resty.Client
}

// New constructs a Client. token is sent as a bearer token when non-empty.
func New(baseURL, token string) *Client {
	httpc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		httpc.SetAuthToken(token)
	}
	return &Client{http: httpc}
}

// RecordWorkout submits one package. idempotencyKey may be empty.
func (c *Client) RecordWorkout(ctx context.Context, req api.RecordWorkoutRequest, idempotencyKey string) (*api.RecordWorkoutResponse, error) {
	r := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&api.RecordWorkoutResponse{}).
		SetError(&APIError{})
	if idempotencyKey != "" {
		r.SetHeader("Idempotency-Key", idempotencyKey)
	}

	resp, err := r.Post("/v1/workouts")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr, _ := resp.Error().(*APIError)
		if apiErr == nil {
			apiErr = &APIError{}
		}
		apiErr.Status = resp.StatusCode()
		if apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(resp.String())
		}
		return nil, apiErr
	}
	return resp.Result().(*api.RecordWorkoutResponse), nil
}
