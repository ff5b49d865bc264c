package modportal

import (
	"errors"
	"testing"
	"time"

	"glaunch/internal/domain"
	"glaunch/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendIdentity(t *testing.T) {
	p := New(nil, "key")
	assert.Equal(t, "graphql", p.ID())
	assert.NotEmpty(t, p.Name())
}

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr(nil))

	err := wrapErr(errors.New("Message: 429 Too Many Requests"))
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	err = wrapErr(errors.New("too many requests, slow down"))
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	err = wrapErr(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
}

func TestModDataToDetail(t *testing.T) {
	now := time.Now()
	detail := modDataToDetail(ModData{
		ID:         42,
		Slug:       "better-maps",
		Name:       "Better Maps",
		Summary:    "More maps.",
		AuthorName: "alex",
		CategoryID: 5,
		Downloads:  1234,
		MainFileID: 101,
		UpdatedAt:  now,
	})

	assert.Equal(t, source.ModDetail{
		ID:           42,
		Slug:         "better-maps",
		Name:         "Better Maps",
		Summary:      "More maps.",
		Author:       "alex",
		CategoryID:   5,
		Downloads:    1234,
		LatestFileID: 101,
		UpdatedAt:    now,
	}, detail)
}

func TestFileDataToRecord(t *testing.T) {
	now := time.Now()
	rec := fileDataToRecord(FileData{
		ID:             101,
		ModID:          42,
		DisplayName:    "Better Maps 1.1",
		FileName:       "better-maps-1.1.zip",
		SizeBytes:      2048,
		ReleasedAt:     now,
		RequiredModIDs: []int{7},
	})

	require.Equal(t, 101, rec.ID)
	assert.Equal(t, 42, rec.ModID)
	assert.Equal(t, int64(2048), rec.Size)
	assert.Equal(t, []int{7}, rec.Dependencies)
}
