package modregistry

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"glaunch/internal/domain"
	"glaunch/internal/source"
)

// ModRegistry implements source.Registry over the REST API.
type ModRegistry struct {
	client *Client
}

// New creates a new REST registry backend.
func New(httpClient *http.Client, apiKey string) *ModRegistry {
	return &ModRegistry{
		client: NewClient(httpClient, apiKey),
	}
}

// Client exposes the underlying API client (for base URL overrides).
func (r *ModRegistry) Client() *Client {
	return r.client
}

// ID returns the backend identifier.
func (r *ModRegistry) ID() string {
	return "rest"
}

// Name returns the display name.
func (r *ModRegistry) Name() string {
	return "Mod Registry"
}

// Search finds mods matching the query.
func (r *ModRegistry) Search(ctx context.Context, query source.SearchQuery) (source.ResultPage, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50 // keep the offset aligned with what the API serves
	}
	index := query.Page * pageSize

	mods, pg, err := r.client.SearchMods(ctx, query.Query, query.Category, pageSize, index)
	if err != nil {
		return source.ResultPage{}, err
	}

	page := source.ResultPage{
		Mods:     make([]source.ModDetail, len(mods)),
		Page:     query.Page,
		PageSize: pageSize,
	}
	if pg != nil {
		page.TotalCount = pg.TotalCount
	}
	for i, m := range mods {
		page.Mods[i] = modToDetail(m)
	}
	return page, nil
}

// GetMod retrieves a specific mod.
func (r *ModRegistry) GetMod(ctx context.Context, modID int) (*source.ModDetail, error) {
	m, err := r.client.GetMod(ctx, modID)
	if err != nil {
		return nil, err
	}
	detail := modToDetail(*m)
	return &detail, nil
}

// GetFiles returns the downloadable files for a mod, newest first.
func (r *ModRegistry) GetFiles(ctx context.Context, modID int) ([]source.FileRecord, error) {
	files, err := r.client.GetModFiles(ctx, modID)
	if err != nil {
		return nil, err
	}

	records := make([]source.FileRecord, len(files))
	for i, f := range files {
		records[i] = fileToRecord(f)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReleasedAt.After(records[j].ReleasedAt)
	})
	return records, nil
}

// GetFile retrieves a single file record.
func (r *ModRegistry) GetFile(ctx context.Context, modID, fileID int) (*source.FileRecord, error) {
	f, err := r.client.GetModFile(ctx, modID, fileID)
	if err != nil {
		return nil, err
	}
	rec := fileToRecord(*f)
	return &rec, nil
}

// LatestFile returns the newest file for a mod.
func (r *ModRegistry) LatestFile(ctx context.Context, modID int) (*source.FileRecord, error) {
	files, err := r.GetFiles(ctx, modID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: mod %d has no files", domain.ErrModNotFound, modID)
	}
	return &files[0], nil
}

// Categories returns the registry's category set.
func (r *ModRegistry) Categories(ctx context.Context) ([]source.Category, error) {
	cats, err := r.client.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]source.Category, len(cats))
	for i, c := range cats {
		result[i] = source.Category{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	return result, nil
}

// DownloadURL resolves the CDN URL for a file. Prefers the URL embedded in
// the file record when the API supplies one, falling back to the
// download-url endpoint.
func (r *ModRegistry) DownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	f, err := r.client.GetModFile(ctx, modID, fileID)
	if err == nil && f.DownloadURL != "" {
		return f.DownloadURL, nil
	}
	return r.client.GetDownloadURL(ctx, modID, fileID)
}

func modToDetail(m Mod) source.ModDetail {
	return source.ModDetail{
		ID:           m.ID,
		Slug:         m.Slug,
		Name:         m.Name,
		Summary:      m.Summary,
		Author:       m.Author.Name,
		CategoryID:   m.CategoryID,
		Downloads:    m.DownloadCount,
		LatestFileID: m.MainFileID,
		UpdatedAt:    m.DateModified,
	}
}

func fileToRecord(f File) source.FileRecord {
	rec := source.FileRecord{
		ID:         f.ID,
		ModID:      f.ModID,
		Name:       f.DisplayName,
		FileName:   f.FileName,
		Size:       f.FileLength,
		ReleasedAt: f.FileDate,
	}
	for _, dep := range f.Dependencies {
		if dep.Relation == RelationRequired {
			rec.Dependencies = append(rec.Dependencies, dep.ModID)
		}
	}
	return rec
}

var _ source.Registry = (*ModRegistry)(nil)
