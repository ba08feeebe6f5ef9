package graphview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"graphdoc/domain/graph"
)

// HTTPClient fetches graph documents from the server's /graph/{id} endpoint.
// There is no retry and no timeout of its own; cancellation comes from the
// caller's context.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, Client: http.DefaultClient}
}

// FetchGraph retrieves the full graph document for id in one response.
// Non-success statuses are surfaced as errors without interpretation.
func (c *HTTPClient) FetchGraph(ctx context.Context, id string) (graph.Document, error) {
	u := c.BaseURL + "/graph/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return graph.Document{}, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return graph.Document{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return graph.Document{}, fmt.Errorf("fetch graph %s: %s", id, resp.Status)
	}
	var doc graph.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return graph.Document{}, fmt.Errorf("decode graph %s: %w", id, err)
	}
	return doc, nil
}
