package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glaunch/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeGame places a stub game script inside an installed instance and
// returns the file it writes its arguments into.
func installFakeGame(t *testing.T, m *Manager) string {
	t.Helper()

	path, err := m.Path(domain.BranchRelease, 0, true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "version.txt"), []byte("5\n"), 0644))

	argsFile := filepath.Join(path, "args.txt")
	script := "#!/bin/sh\necho \"$@\" > \"" + argsFile + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(path, "game"), []byte(script), 0755))
	return argsFile
}

func TestLaunch(t *testing.T) {
	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)
	argsFile := installFakeGame(t, m)

	l := NewLauncher(m, "game")
	require.NoError(t, l.Launch(context.Background(), domain.BranchRelease, 0, "Steve"))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--name Steve", strings.TrimSpace(string(data)))
}

func TestLaunchValidatesNameFirst(t *testing.T) {
	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)

	l := NewLauncher(m, "game")

	// No instance exists; the name check must still fire before any I/O.
	err := l.Launch(context.Background(), domain.BranchRelease, 0, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = l.Launch(context.Background(), domain.BranchRelease, 0, strings.Repeat("x", 17))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLaunchBinaryMissing(t *testing.T) {
	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)

	l := NewLauncher(m, "game")
	err := l.Launch(context.Background(), domain.BranchRelease, 0, "Steve")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGame)
}

func TestLaunchRefusedWhileBusy(t *testing.T) {
	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)
	installFakeGame(t, m)

	release, err := m.Lock(domain.BranchRelease, 0, "installing")
	require.NoError(t, err)
	defer release()

	l := NewLauncher(m, "game")
	err = l.Launch(context.Background(), domain.BranchRelease, 0, "Steve")
	assert.ErrorIs(t, err, domain.ErrBusy)
}

func TestLaunchGameFailure(t *testing.T) {
	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)

	path, err := m.Path(domain.BranchRelease, 0, true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "game"), []byte("#!/bin/sh\nexit 3\n"), 0755))

	l := NewLauncher(m, "game")
	err = l.Launch(context.Background(), domain.BranchRelease, 0, "Steve")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGame)
}
