package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"better-maps", "better-maps"},
		{"Better Maps", "better-maps"},
		{"mod!@#name", "mod-name"},
		{"--trimmed--", "trimmed"},
		{"", "mod"},
		{"###", "mod"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSlug(tt.input), "input %q", tt.input)
	}
}

func TestModFileName(t *testing.T) {
	assert.Equal(t, "better-maps_m42_f100.zip", ModFileName("better-maps", 42, 100, true))
	assert.Equal(t, "better-maps_m42_f100.zip.disabled", ModFileName("better-maps", 42, 100, false))
	assert.Equal(t, "my-mod_m1_f2.zip", ModFileName("My Mod", 1, 2, true))
}

func TestParseModFileName(t *testing.T) {
	rec := ParseModFileName("better-maps_m42_f100.zip")
	require.NotNil(t, rec)
	assert.Equal(t, 42, rec.ModID)
	assert.Equal(t, 100, rec.FileID)
	assert.Equal(t, "better-maps", rec.Slug)
	assert.True(t, rec.Enabled)
	assert.Equal(t, "better-maps_m42_f100.zip", rec.FileName)

	rec = ParseModFileName("better-maps_m42_f100.zip.disabled")
	require.NotNil(t, rec)
	assert.False(t, rec.Enabled)
}

func TestParseModFileNameSlugWithMarkers(t *testing.T) {
	// Slugs containing underscores and digits must not confuse the id fields.
	rec := ParseModFileName("pack_m2_extra_m7_f13.zip")
	require.NotNil(t, rec)
	assert.Equal(t, "pack_m2_extra", rec.Slug)
	assert.Equal(t, 7, rec.ModID)
	assert.Equal(t, 13, rec.FileID)
}

func TestParseModFileNameRejectsStrays(t *testing.T) {
	for _, name := range []string{
		"readme.txt",
		"mod.zip",
		"_m42_f100.zip",
		"slug_m42.zip",
		"slug_f100.zip",
		"slug_m42_f100.rar",
		"slug_m42_f100.zip.backup",
	} {
		assert.Nil(t, ParseModFileName(name), "name %q", name)
	}
}

func TestModFileNameRoundTrip(t *testing.T) {
	name := ModFileName("Shiny Tools!", 7, 31, false)
	rec := ParseModFileName(name)
	require.NotNil(t, rec)
	assert.Equal(t, 7, rec.ModID)
	assert.Equal(t, 31, rec.FileID)
	assert.Equal(t, "shiny-tools", rec.Slug)
	assert.False(t, rec.Enabled)
}
