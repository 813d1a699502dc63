package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteClient talks to the shared leaderboard document: an
// unauthenticated JSON array read, and an optional authenticated
// replacement write when a token is configured. Without a token the
// store degrades to read-only sharing.
type RemoteClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteClient creates a client for the shared document at baseURL.
// An empty token disables writes.
func NewRemoteClient(baseURL, token string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// CanWrite reports whether write credentials are configured
func (c *RemoteClient) CanWrite() bool {
	return c.token != ""
}

// Fetch retrieves and decodes the shared document. Individual records
// that fail to decode are dropped; the rest survive.
func (c *RemoteClient) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote ranking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote ranking returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read remote ranking: %w", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("malformed remote ranking: %w", err)
	}
	return records, nil
}

// Update replaces the shared document with the given leaderboard.
// Requires write credentials.
func (c *RemoteClient) Update(ctx context.Context, records []Record) error {
	if !c.CanWrite() {
		return fmt.Errorf("no write credentials configured")
	}

	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update remote ranking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote ranking update returned status %d", resp.StatusCode)
	}
	return nil
}
