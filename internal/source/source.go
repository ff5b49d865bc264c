package source

import (
	"context"
	"time"
)

// Category is a browsable mod category exposed by the registry.
type Category struct {
	ID   int
	Name string
	Slug string
}

// ModDetail is the registry's view of a single mod.
type ModDetail struct {
	ID           int
	Slug         string
	Name         string
	Summary      string
	Author       string
	CategoryID   int
	Downloads    int64
	LatestFileID int
	UpdatedAt    time.Time
}

// FileRecord is one downloadable file belonging to a mod, newest files
// first when returned as a list.
type FileRecord struct {
	ID           int
	ModID        int
	Name         string
	FileName     string
	Size         int64
	ReleasedAt   time.Time
	Dependencies []int // registry mod IDs this file requires
}

// SearchQuery contains parameters for searching the registry.
type SearchQuery struct {
	Query    string
	Category int // 0 = all categories
	Page     int
	PageSize int
}

// ResultPage contains one page of search results.
type ResultPage struct {
	Mods       []ModDetail
	TotalCount int // total results available (0 if unknown)
	Page       int
	PageSize   int
}

// Registry is the read-only facade over the external mod catalog. All
// implementations surface domain.ErrRateLimited on registry throttling and
// domain.ErrModNotFound for unknown IDs; no call mutates local state.
type Registry interface {
	ID() string
	Name() string

	Search(ctx context.Context, query SearchQuery) (ResultPage, error)
	GetMod(ctx context.Context, modID int) (*ModDetail, error)
	GetFiles(ctx context.Context, modID int) ([]FileRecord, error)
	GetFile(ctx context.Context, modID, fileID int) (*FileRecord, error)
	LatestFile(ctx context.Context, modID int) (*FileRecord, error)
	Categories(ctx context.Context) ([]Category, error)
	DownloadURL(ctx context.Context, modID, fileID int) (string, error)
}
