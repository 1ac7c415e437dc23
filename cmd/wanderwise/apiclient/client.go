// Package apiclient is the HTTP client the CLI commands use to talk to a
// running wanderwise server.
package apiclient

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

	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
	"github.com/papercomputeco/wanderwise/server"
)

// APIError is a non-200 answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// HistoryList is the body of GET /journal/history.
type HistoryList struct {
	Count     int                      `json:"count"`
	Histories []server.HistoryResponse `json:"histories"`
}

// Client calls the wanderwise HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RunFlow runs the named flow with input and decodes its output into out.
func (c *Client) RunFlow(ctx context.Context, name string, input, out any) error {
	return c.do(ctx, http.MethodPost, "/api/flows/"+url.PathEscape(name), input, out)
}

// Histories lists journaled conversations, optionally for one flow.
func (c *Client) Histories(ctx context.Context, flowName string) (*HistoryList, error) {
	path := "/journal/history"
	if flowName != "" {
		path += "?flow=" + url.QueryEscape(flowName)
	}

	var list HistoryList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// History returns the conversation ending at hash.
func (c *Client) History(ctx context.Context, hash string) (*server.HistoryResponse, error) {
	var history server.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/journal/history/"+url.PathEscape(hash), nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// PushNodes uploads journal nodes.
func (c *Client) PushNodes(ctx context.Context, nodes []*merkle.Node) (*server.PushResponse, error) {
	var resp server.PushResponse
	if err := c.do(ctx, http.MethodPost, "/journal/nodes", nodes, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)

		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp llm.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Details = errResp.Details
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
