package patchserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"glaunch/internal/domain"
)

const defaultBaseURL = "https://patch.glaunch.dev"

// VersionResponse is the wire payload of the latest-version endpoint.
type VersionResponse struct {
	Branch  string `json:"branch"`
	Version int    `json:"version"`
}

// Client talks to the game patch server: version index lookups and payload
// artifact locations. The server is an opaque HTTP service returning JSON
// and binary payloads; this client never interprets payload contents.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new patch server client.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// LatestVersion queries the remote index for a branch's newest concrete
// version number.
func (c *Client) LatestVersion(ctx context.Context, branch domain.Branch) (int, error) {
	url := fmt.Sprintf("%s/v1/version/%s/latest", c.baseURL, branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: querying version index: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: version index returned status %d", domain.ErrNetwork, resp.StatusCode)
	}

	var vr VersionResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return 0, fmt.Errorf("decoding version response: %w", err)
	}
	if vr.Version <= 0 {
		return 0, fmt.Errorf("%w: version index returned %d", domain.ErrNetwork, vr.Version)
	}

	return vr.Version, nil
}

// PayloadURL returns the artifact location for a concrete (branch, version)
// pair. Pure derivation, no network.
func (c *Client) PayloadURL(branch domain.Branch, version int) string {
	return fmt.Sprintf("%s/v1/dist/%s/%d/game.zip", c.baseURL, branch, version)
}
