package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrSubmission is returned for any failed order submission: transport
// errors and non-2xx responses alike.
var ErrSubmission = errors.New("order submission failed")

const maxErrorBody = 4096

// Client posts orders to the vendor save_order endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Submit sends one POST with the order as a JSON body. It does not retry.
// The vendor response body is returned as-is on a 2xx status.
func (c *Client) Submit(ctx context.Context, order *SaveOrderRequest) (json.RawMessage, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("%w: encode order: %w", ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrSubmission, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d, message: %s", ErrSubmission, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrSubmission, err)
	}
	if !json.Valid(raw) {
		// A 2xx is success even when the vendor body is not JSON.
		quoted, _ := json.Marshal(string(raw))
		return quoted, nil
	}
	return raw, nil
}
