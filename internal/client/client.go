// Package client implements the REST client for the activity enrollment
// server. The server is a black box: every method maps to exactly one
// endpoint and the client holds no state beyond the session cookie jar.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// APIError is a server-reported failure: a non-success status with an
// optional structured detail body. Transport failures are ordinary
// wrapped errors, never an APIError.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Client talks to the enrollment server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client for the given base URL. The underlying HTTP
// client carries a cookie jar so the server-side session cookie set by
// /login rides along on every later request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Activities fetches the full activity collection via GET /activities.
// The returned snapshot preserves the server's reported order.
func (c *Client) Activities(ctx context.Context) (model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, fmt.Errorf("build activities request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode activities response: %w", err)
	}
	return snap, nil
}

// Me queries GET /me for the current identity. A non-OK status means
// anonymous and is not an error; only transport-level failures are
// reported as errors.
func (c *Client) Me(ctx context.Context) (model.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("build identity request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Session{}, nil
	}

	var sess model.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return model.Session{}, fmt.Errorf("decode identity response: %w", err)
	}
	return sess, nil
}

// Login submits credentials via POST /login and returns the server's
// confirmation message. On success the session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.postForm(ctx, "/login", username, password)
}

// Register submits new-account data via POST /register. Registration
// does not establish a session; the caller still has to log in.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	return c.postForm(ctx, "/register", username, password)
}

// Logout requests session termination via POST /logout.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// Signup enrolls an email in an activity via
// POST /activities/{name}/signup?email={email}.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, activity, "signup", email)
}

// Unregister withdraws an email from an activity via
// DELETE /activities/{name}/unregister?email={email}.
func (c *Client) Unregister(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, activity, "unregister", email)
}

// postForm sends form-encoded credentials and decodes the {message} /
// {detail} envelope shared by /login and /register.
func (c *Client) postForm(ctx context.Context, path, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimPrefix(path, "/"), err)
	}
	defer resp.Body.Close()

	return decodeMessage(resp)
}

// mutate issues an enroll/withdraw request. Path and query parameters
// are URL-escaped; activity names routinely contain spaces.
func (c *Client) mutate(ctx context.Context, method, activity, op, email string) (string, error) {
	u := fmt.Sprintf("%s/activities/%s/%s?email=%s",
		c.baseURL, url.PathEscape(activity), op, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	return decodeMessage(resp)
}

// decodeMessage returns the {message} text of a success response, or an
// *APIError carrying the {detail} text of a failure response. A success
// body that cannot be decoded is an error rather than silent feedback loss.
func decodeMessage(resp *http.Response) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(resp)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.Message, nil
}

// apiError builds an APIError from a non-success response. The detail
// body is optional; a missing or malformed one leaves Detail empty so
// callers fall back to their generic text.
func apiError(resp *http.Response) *APIError {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{Status: resp.StatusCode, Detail: body.Detail}
}
