// Package client is the remote data client: a thin HTTP wrapper over the
// contract API. It knows the wire contract and nothing about application
// state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/meninojhony/modec-challenger/model"
	"github.com/meninojhony/modec-challenger/urlsync"
)

// RemoteError is any failure reported by the contract API: a network
// failure, a non-2xx response or a malformed body. Message carries the
// server's structured error message when one was present.
type RemoteError struct {
	StatusCode int    // zero when the request never reached the server
	Code       string // server error code, e.g. "ContractNotFoundError"
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("remote error (status %d)", e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// errorEnvelope matches the API's error body: {"error":{"code","message"}}.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to one contract API endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for the API at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer token sent on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the bearer token currently in use, typically the one
// stored by Login. Empty when the client is unauthenticated.
func (c *Client) Token() string {
	return c.token
}

// Login authenticates against the API and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	var result struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &result); err != nil {
		return err
	}
	c.token = result.Token
	return nil
}

// ListContracts fetches one page of the filtered contract listing.
func (c *Client) ListContracts(ctx context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error) {
	query := urlsync.EncodeFilters(filters)
	urlsync.EncodePagination(query, pagination)

	var page model.ContractPage
	if err := c.do(ctx, http.MethodGet, "/contracts", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetContract fetches a single contract by id.
func (c *Client) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	if err := c.do(ctx, http.MethodGet, "/contracts/"+url.PathEscape(id), nil, nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// CreateContract sends a creation payload and returns the created contract.
func (c *Client) CreateContract(ctx context.Context, input model.ContractCreate) (*model.Contract, error) {
	var contract model.Contract
	if err := c.do(ctx, http.MethodPost, "/contracts", nil, input, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// UpdateContract sends a sparse update and returns the updated contract.
func (c *Client) UpdateContract(ctx context.Context, id string, input model.ContractUpdate) (*model.Contract, error) {
	var contract model.Contract
	if err := c.do(ctx, http.MethodPut, "/contracts/"+url.PathEscape(id), nil, input, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// DeleteContract deletes a contract by id.
func (c *Client) DeleteContract(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contracts/"+url.PathEscape(id), nil, nil, nil)
}

// ListCategories fetches all contract categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListHistory fetches the change history of a contract, newest first.
func (c *Client) ListHistory(ctx context.Context, id string) ([]model.ChangeHistory, error) {
	var history []model.ChangeHistory
	if err := c.do(ctx, http.MethodGet, "/contracts/"+url.PathEscape(id)+"/history", nil, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// GetStats fetches the dashboard summary.
func (c *Client) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Export streams the filtered listing as an XLSX workbook into w.
func (c *Client) Export(ctx context.Context, filters model.Filters, w io.Writer) error {
	query := urlsync.EncodeFilters(filters)

	req, err := c.newRequest(ctx, http.MethodGet, "/contracts/export", query, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read export: %w", err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &RemoteError{Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &RemoteError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, result any) error {
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if result == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// readError extracts the structured envelope message from a failed
// response. A body without the envelope yields a RemoteError with only the
// status code.
func readError(resp *http.Response) error {
	remoteErr := &RemoteError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return remoteErr
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		remoteErr.Code = envelope.Error.Code
		remoteErr.Message = envelope.Error.Message
	}
	return remoteErr
}
