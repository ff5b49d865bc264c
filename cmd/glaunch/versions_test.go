package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsCmd_Structure(t *testing.T) {
	assert.Equal(t, "versions", versionsCmd.Use)
	assert.NotEmpty(t, versionsCmd.Short)
	assert.NotNil(t, versionsCmd.RunE)
}

func TestVersionsCmd_ListsVersions(t *testing.T) {
	setupPatchServer(t, 3)

	cmd := &cobra.Command{Use: "test"}
	cmd.AddCommand(versionsCmd)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"versions"})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "0 (latest)")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "1")
}

func TestVersionsCmd_JSON(t *testing.T) {
	setupPatchServer(t, 2)
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	cmd := &cobra.Command{Use: "test"}
	cmd.AddCommand(versionsCmd)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"versions"})

	err := cmd.Execute()
	require.NoError(t, err)

	var entries []struct {
		Version   int  `json:"version"`
		Latest    bool `json:"latest"`
		Installed bool `json:"installed"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 0, entries[0].Version)
	assert.True(t, entries[0].Latest)
	assert.Equal(t, 2, entries[1].Version)
	assert.False(t, entries[1].Installed)
}
