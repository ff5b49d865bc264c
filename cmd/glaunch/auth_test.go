package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuth(t *testing.T, args ...string) string {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	cmd.AddCommand(authCmd)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"auth"}, args...))

	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestAuthCmd_Structure(t *testing.T) {
	assert.Equal(t, "auth", authCmd.Use)

	subs := make(map[string]bool)
	for _, c := range authCmd.Commands() {
		subs[c.Name()] = true
	}
	assert.True(t, subs["set"])
	assert.True(t, subs["remove"])
	assert.True(t, subs["status"])
}

func TestAuthCmd_Lifecycle(t *testing.T) {
	setupPatchServer(t, 3)

	assert.Contains(t, runAuth(t, "status"), "not set")
	assert.Contains(t, runAuth(t, "set", "my-api-key"), "saved")
	assert.Contains(t, runAuth(t, "status"), "stored")
	assert.Contains(t, runAuth(t, "remove"), "removed")
	assert.Contains(t, runAuth(t, "status"), "not set")
}
