package modportal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hasura/go-graphql-client"
)

const defaultEndpoint = "https://registry.glaunch.dev/v2/graphql"

// ModData is the GraphQL representation of a registry mod.
type ModData struct {
	ID         int       `graphql:"id"`
	Slug       string    `graphql:"slug"`
	Name       string    `graphql:"name"`
	Summary    string    `graphql:"summary"`
	AuthorName string    `graphql:"authorName"`
	CategoryID int       `graphql:"categoryId"`
	Downloads  int64     `graphql:"downloads"`
	MainFileID int       `graphql:"mainFileId"`
	UpdatedAt  time.Time `graphql:"updatedAt"`
}

// FileData is the GraphQL representation of a mod file.
type FileData struct {
	ID             int       `graphql:"id"`
	ModID          int       `graphql:"modId"`
	DisplayName    string    `graphql:"displayName"`
	FileName       string    `graphql:"fileName"`
	SizeBytes      int64     `graphql:"sizeBytes"`
	ReleasedAt     time.Time `graphql:"releasedAt"`
	DownloadURL    string    `graphql:"downloadUrl"`
	RequiredModIDs []int     `graphql:"requiredModIds"`
}

// CategoryData is the GraphQL representation of a category.
type CategoryData struct {
	ID   int    `graphql:"id"`
	Name string `graphql:"name"`
	Slug string `graphql:"slug"`
}

// Client wraps the registry's v2 GraphQL API.
type Client struct {
	gql *graphql.Client
}

// NewClient creates a new GraphQL API client. An API key, when set, is
// attached to every request by a wrapping transport.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	transport := &apiKeyTransport{
		base:   httpClient.Transport,
		apiKey: apiKey,
	}
	authed := &http.Client{Transport: transport}

	return &Client{
		gql: graphql.NewClient(defaultEndpoint, authed),
	}
}

// SetEndpoint overrides the GraphQL endpoint (used by tests and mirrors).
func (c *Client) SetEndpoint(endpoint string) {
	c.gql = graphql.NewClient(endpoint, nil)
}

type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		req.Header.Set("x-api-key", t.apiKey)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// GetMod fetches a mod by ID.
func (c *Client) GetMod(ctx context.Context, modID int) (*ModData, error) {
	var query struct {
		Mod ModData `graphql:"mod(id: $id)"`
	}

	variables := map[string]interface{}{
		"id": graphql.Int(modID),
	}

	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying mod: %w", err)
	}

	return &query.Mod, nil
}

// SearchMods searches for mods by name.
func (c *Client) SearchMods(ctx context.Context, search string, categoryID, limit, offset int) ([]ModData, int, error) {
	var query struct {
		Mods struct {
			Nodes      []ModData `graphql:"nodes"`
			TotalCount int       `graphql:"totalCount"`
		} `graphql:"mods(filter: {name: $name, categoryId: $categoryId}, first: $first, offset: $offset)"`
	}

	variables := map[string]interface{}{
		"name":       graphql.String(search),
		"categoryId": graphql.Int(categoryID),
		"first":      graphql.Int(limit),
		"offset":     graphql.Int(offset),
	}

	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, 0, fmt.Errorf("searching mods: %w", err)
	}

	return query.Mods.Nodes, query.Mods.TotalCount, nil
}

// GetModFiles fetches files for a mod.
func (c *Client) GetModFiles(ctx context.Context, modID int) ([]FileData, error) {
	var query struct {
		ModFiles struct {
			Nodes []FileData `graphql:"nodes"`
		} `graphql:"modFiles(modId: $modId)"`
	}

	variables := map[string]interface{}{
		"modId": graphql.Int(modID),
	}

	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying mod files: %w", err)
	}

	return query.ModFiles.Nodes, nil
}

// GetCategories fetches the category list.
func (c *Client) GetCategories(ctx context.Context) ([]CategoryData, error) {
	var query struct {
		Categories []CategoryData `graphql:"categories"`
	}

	if err := c.gql.Query(ctx, &query, nil); err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}

	return query.Categories, nil
}
