package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxMenuBody bounds the vendor response we are willing to decode.
const maxMenuBody = 16 << 20

// Client fetches the raw vendor menu.
type Client struct {
	endpoint     string
	restaurantID string
	http         *http.Client
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(endpoint, restaurantID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, restaurantID: restaurantID, http: httpClient}
}

// Fetch performs GET <endpoint>?restaurant_id=<id>. Transport failures,
// non-2xx statuses and undecodable bodies are all reported as
// ErrMenuUnavailable.
func (c *Client) Fetch(ctx context.Context) (*APIResponse, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: parse endpoint: %w", ErrMenuUnavailable, err)
	}
	if c.restaurantID != "" {
		q := u.Query()
		q.Set("restaurant_id", c.restaurantID)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrMenuUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, fmt.Errorf("%w: menu API request failed (%d)", ErrMenuUnavailable, resp.StatusCode)
	}

	var out APIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMenuBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode menu: %w", ErrMenuUnavailable, err)
	}
	return &out, nil
}
