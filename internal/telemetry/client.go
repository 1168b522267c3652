package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/agentlens-tui/internal/logger"
	"github.com/j-veylop/agentlens-tui/internal/models"
)

// Client talks to the telemetry API. All methods are read-only snapshots of
// already-aggregated data; the client never writes.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a telemetry client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetStory fetches the overview rollup for one story in a scope.
func (c *Client) GetStory(ctx context.Context, story models.StoryID, scope models.Scope) (*StoryOverview, error) {
	q := scopeValues(scope)
	var out StoryOverview
	if err := c.getJSON(ctx, "/api/stories/"+url.PathEscape(string(story)), q, "story", string(story), &out); err != nil {
		return nil, err
	}
	// Nil lists degrade to empty, never to an error.
	if out.DetailTable == nil {
		out.DetailTable = []models.OperationAggregate{}
	}
	if out.ChartData == nil {
		out.ChartData = []ChartPoint{}
	}
	return &out, nil
}

// GetCachePatterns fetches all cache patterns for the active window.
func (c *Client) GetCachePatterns(ctx context.Context, scope models.Scope) (*CachePatternsPayload, error) {
	var out CachePatternsPayload
	if err := c.getJSON(ctx, "/api/stories/cache/patterns", scopeValues(scope), "cache patterns", "all", &out); err != nil {
		return nil, err
	}
	if out.Patterns == nil {
		out.Patterns = []models.CachePattern{}
	}
	return &out, nil
}

// GetCacheOperation fetches the per-operation cache breakdown.
func (c *Client) GetCacheOperation(ctx context.Context, agent, operation string, scope models.Scope) (*CacheOperationPayload, error) {
	path := "/api/stories/cache/operations/" + url.PathEscape(agent) + "/" + url.PathEscape(operation)
	var out CacheOperationPayload
	if err := c.getJSON(ctx, path, scopeValues(scope), "operation", agent+"/"+operation, &out); err != nil {
		return nil, err
	}
	if out.Patterns == nil {
		out.Patterns = []models.CachePattern{}
	}
	if out.Opportunities == nil {
		out.Opportunities = []CacheOpportunity{}
	}
	return &out, nil
}

// GetCacheGroup fetches one pattern group with its member calls.
func (c *Client) GetCacheGroup(ctx context.Context, agent, operation, groupID string, scope models.Scope) (*CacheGroupPayload, error) {
	path := "/api/stories/cache/operations/" + url.PathEscape(agent) + "/" +
		url.PathEscape(operation) + "/groups/" + url.PathEscape(groupID)
	var out CacheGroupPayload
	if err := c.getJSON(ctx, path, scopeValues(scope), "pattern group", groupID, &out); err != nil {
		return nil, err
	}
	if out.Calls == nil {
		out.Calls = []models.CallRecord{}
	}
	return &out, nil
}

// GetCall fetches a full call record by id.
func (c *Client) GetCall(ctx context.Context, callID string) (*models.CallRecord, error) {
	var out models.CallRecord
	if err := c.getJSON(ctx, "/api/calls/"+url.PathEscape(callID), nil, "call", callID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCalls fetches sibling calls for benchmarking.
func (c *Client) ListCalls(ctx context.Context, params ListCallsParams) ([]models.CallRecord, error) {
	q := url.Values{}
	if params.Operation != "" {
		q.Set("operation", params.Operation)
	}
	if params.Agent != "" {
		q.Set("agent", params.Agent)
	}
	if params.Days > 0 {
		q.Set("days", strconv.Itoa(params.Days))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	var out []models.CallRecord
	if err := c.getJSON(ctx, "/api/calls", q, "calls", params.Operation, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.CallRecord{}
	}
	return out, nil
}

func scopeValues(scope models.Scope) url.Values {
	q := url.Values{}
	q.Set("days", strconv.Itoa(scope.Window.Days()))
	if scope.Project != "" {
		q.Set("project", scope.Project)
	}
	return q
}

// getJSON performs a GET and decodes the response. 404 maps to
// NotFoundError; every other non-2xx status and any transport failure maps
// to ServerError.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, resource, key string, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ServerError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Resource: resource, Key: key}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServerError{Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ServerError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
