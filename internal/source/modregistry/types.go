package modregistry

import "time"

// APIResponse is the standard envelope for single-object responses.
type APIResponse[T any] struct {
	Data T `json:"data"`
}

// Pagination describes the registry's paging metadata.
type Pagination struct {
	Index      int `json:"index"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// PaginatedResponse is the envelope for list responses.
type PaginatedResponse[T any] struct {
	Data       T          `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Mod is the wire representation of a registry mod.
type Mod struct {
	ID            int       `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Summary       string    `json:"summary"`
	Author        Author    `json:"author"`
	CategoryID    int       `json:"categoryId"`
	DownloadCount int64     `json:"downloadCount"`
	MainFileID    int       `json:"mainFileId"`
	DateModified  time.Time `json:"dateModified"`
}

// Author identifies a mod's author.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// File is the wire representation of a downloadable mod file.
type File struct {
	ID           int          `json:"id"`
	ModID        int          `json:"modId"`
	DisplayName  string       `json:"displayName"`
	FileName     string       `json:"fileName"`
	FileLength   int64        `json:"fileLength"`
	FileDate     time.Time    `json:"fileDate"`
	DownloadURL  string       `json:"downloadUrl"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency declares a required mod for a file.
type Dependency struct {
	ModID    int `json:"modId"`
	Relation int `json:"relationType"`
}

// RelationRequired is the relationType value for hard dependencies; other
// relations (optional, embedded) are ignored by the install engine.
const RelationRequired = 3

// Category is the wire representation of a registry category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// DownloadURLResponse wraps the download-url endpoint payload.
type DownloadURLResponse struct {
	URL string `json:"url"`
}
