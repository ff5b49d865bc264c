package modregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"glaunch/internal/domain"
)

const defaultBaseURL = "https://registry.glaunch.dev"

// Client wraps the mod registry REST API v1.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new registry API client.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint (used by tests and mirrors).
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetAPIKey sets the API key for authentication.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

// doRequest performs an HTTP request and decodes the JSON body into result.
// Status mapping: 429 -> domain.ErrRateLimited (with Retry-After seconds in
// the message when present), 404 -> domain.ErrModNotFound, other non-200 ->
// domain.ErrNetwork.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: executing request: %v", domain.ErrNetwork, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusTooManyRequests:
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			if secs, perr := strconv.Atoi(retry); perr == nil {
				return fmt.Errorf("%w: retry after %ds", domain.ErrRateLimited, secs)
			}
		}
		return domain.ErrRateLimited
	case http.StatusNotFound:
		return fmt.Errorf("%w: resource not found", domain.ErrModNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 10*1024))
		return fmt.Errorf("%w: API error (status %d): %s", domain.ErrNetwork, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// SearchMods searches for mods with the given parameters.
func (c *Client) SearchMods(ctx context.Context, query string, categoryID, pageSize, index int) ([]Mod, *Pagination, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50 // API max
	}

	params := url.Values{}
	if query != "" {
		params.Set("searchFilter", query)
	}
	if categoryID > 0 {
		params.Set("categoryId", strconv.Itoa(categoryID))
	}
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("index", strconv.Itoa(index))

	path := "/v1/mods/search?" + params.Encode()

	var resp PaginatedResponse[[]Mod]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, nil, fmt.Errorf("searching mods: %w", err)
	}

	return resp.Data, &resp.Pagination, nil
}

// GetMod fetches a single mod by ID.
func (c *Client) GetMod(ctx context.Context, modID int) (*Mod, error) {
	path := fmt.Sprintf("/v1/mods/%d", modID)

	var resp APIResponse[Mod]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("getting mod %d: %w", modID, err)
	}
	return &resp.Data, nil
}

// GetModFiles fetches all files for a mod, newest first.
func (c *Client) GetModFiles(ctx context.Context, modID int) ([]File, error) {
	path := fmt.Sprintf("/v1/mods/%d/files", modID)

	var resp PaginatedResponse[[]File]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("getting files for mod %d: %w", modID, err)
	}
	return resp.Data, nil
}

// GetModFile fetches a specific file for a mod.
func (c *Client) GetModFile(ctx context.Context, modID, fileID int) (*File, error) {
	path := fmt.Sprintf("/v1/mods/%d/files/%d", modID, fileID)

	var resp APIResponse[File]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("getting file %d of mod %d: %w", fileID, modID, err)
	}
	return &resp.Data, nil
}

// GetCategories fetches the category list.
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var resp APIResponse[[]Category]
	if err := c.doRequest(ctx, "/v1/categories", &resp); err != nil {
		return nil, fmt.Errorf("getting categories: %w", err)
	}
	return resp.Data, nil
}

// GetDownloadURL resolves the CDN URL for a file.
func (c *Client) GetDownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	path := fmt.Sprintf("/v1/mods/%d/files/%d/download-url", modID, fileID)

	var resp APIResponse[DownloadURLResponse]
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("getting download URL: %w", err)
	}
	return resp.Data.URL, nil
}
