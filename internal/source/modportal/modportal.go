package modportal

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"glaunch/internal/domain"
	"glaunch/internal/source"
)

// ModPortal implements source.Registry over the registry's v2 GraphQL API.
// Same catalog as the REST backend, different transport; selected via the
// registry_backend config key.
type ModPortal struct {
	client *Client
}

// New creates a new GraphQL registry backend.
func New(httpClient *http.Client, apiKey string) *ModPortal {
	return &ModPortal{
		client: NewClient(httpClient, apiKey),
	}
}

// Client exposes the underlying API client (for endpoint overrides).
func (p *ModPortal) Client() *Client {
	return p.client
}

// ID returns the backend identifier.
func (p *ModPortal) ID() string {
	return "graphql"
}

// Name returns the display name.
func (p *ModPortal) Name() string {
	return "Mod Registry (GraphQL)"
}

// Search finds mods matching the query.
func (p *ModPortal) Search(ctx context.Context, query source.SearchQuery) (source.ResultPage, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := query.Page * pageSize

	mods, total, err := p.client.SearchMods(ctx, query.Query, query.Category, pageSize, offset)
	if err != nil {
		return source.ResultPage{}, wrapErr(err)
	}

	page := source.ResultPage{
		Mods:       make([]source.ModDetail, len(mods)),
		TotalCount: total,
		Page:       query.Page,
		PageSize:   pageSize,
	}
	for i, m := range mods {
		page.Mods[i] = modDataToDetail(m)
	}
	return page, nil
}

// GetMod retrieves a specific mod.
func (p *ModPortal) GetMod(ctx context.Context, modID int) (*source.ModDetail, error) {
	m, err := p.client.GetMod(ctx, modID)
	if err != nil {
		return nil, wrapErr(err)
	}
	if m.ID == 0 {
		return nil, fmt.Errorf("%w: mod %d", domain.ErrModNotFound, modID)
	}
	detail := modDataToDetail(*m)
	return &detail, nil
}

// GetFiles returns the downloadable files for a mod, newest first.
func (p *ModPortal) GetFiles(ctx context.Context, modID int) ([]source.FileRecord, error) {
	files, err := p.client.GetModFiles(ctx, modID)
	if err != nil {
		return nil, wrapErr(err)
	}

	records := make([]source.FileRecord, len(files))
	for i, f := range files {
		records[i] = fileDataToRecord(f)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReleasedAt.After(records[j].ReleasedAt)
	})
	return records, nil
}

// GetFile retrieves a single file record.
func (p *ModPortal) GetFile(ctx context.Context, modID, fileID int) (*source.FileRecord, error) {
	files, err := p.GetFiles(ctx, modID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].ID == fileID {
			return &files[i], nil
		}
	}
	return nil, fmt.Errorf("%w: file %d of mod %d", domain.ErrModNotFound, fileID, modID)
}

// LatestFile returns the newest file for a mod.
func (p *ModPortal) LatestFile(ctx context.Context, modID int) (*source.FileRecord, error) {
	files, err := p.GetFiles(ctx, modID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: mod %d has no files", domain.ErrModNotFound, modID)
	}
	return &files[0], nil
}

// Categories returns the registry's category set.
func (p *ModPortal) Categories(ctx context.Context) ([]source.Category, error) {
	cats, err := p.client.GetCategories(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}

	result := make([]source.Category, len(cats))
	for i, c := range cats {
		result[i] = source.Category{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	return result, nil
}

// DownloadURL resolves the CDN URL for a file.
func (p *ModPortal) DownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	f, err := p.GetFile(ctx, modID, fileID)
	if err != nil {
		return "", err
	}
	files, err := p.client.GetModFiles(ctx, modID)
	if err != nil {
		return "", wrapErr(err)
	}
	for _, fd := range files {
		if fd.ID == f.ID && fd.DownloadURL != "" {
			return fd.DownloadURL, nil
		}
	}
	return "", fmt.Errorf("%w: file %d of mod %d has no download URL", domain.ErrModNotFound, fileID, modID)
}

// wrapErr maps GraphQL transport failures onto the error taxonomy. The
// hasura client folds HTTP status into the error string, so throttling is
// detected textually.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "too many requests") {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
}

func modDataToDetail(m ModData) source.ModDetail {
	return source.ModDetail{
		ID:           m.ID,
		Slug:         m.Slug,
		Name:         m.Name,
		Summary:      m.Summary,
		Author:       m.AuthorName,
		CategoryID:   m.CategoryID,
		Downloads:    m.Downloads,
		LatestFileID: m.MainFileID,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fileDataToRecord(f FileData) source.FileRecord {
	return source.FileRecord{
		ID:           f.ID,
		ModID:        f.ModID,
		Name:         f.DisplayName,
		FileName:     f.FileName,
		Size:         f.SizeBytes,
		ReleasedAt:   f.ReleasedAt,
		Dependencies: f.RequiredModIDs,
	}
}

var _ source.Registry = (*ModPortal)(nil)
