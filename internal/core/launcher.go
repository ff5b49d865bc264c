package core

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"glaunch/internal/domain"
)

// Launcher starts the game process for an installed instance.
type Launcher struct {
	instances  *Manager
	binaryName string
}

// NewLauncher creates a launcher for the given game binary name.
func NewLauncher(instances *Manager, binaryName string) *Launcher {
	if binaryName == "" {
		binaryName = "game"
	}
	return &Launcher{
		instances:  instances,
		binaryName: binaryName,
	}
}

// Launch runs the game for (branch, version) and blocks until it exits.
// The instance stays locked for the duration, so deletes and updates are
// refused while the game runs. Player name validation happens at the
// boundary before any work; it is rechecked here as a last line.
func (l *Launcher) Launch(ctx context.Context, branch domain.Branch, version int, playerName string) error {
	if err := domain.ValidatePlayerName(playerName); err != nil {
		return err
	}

	instDir, err := l.instances.Path(branch, version, false)
	if err != nil {
		return err
	}

	binary := filepath.Join(instDir, l.binaryName)
	if _, err := os.Stat(binary); err != nil {
		return fmt.Errorf("%w: game binary not found at %s", domain.ErrGame, binary)
	}

	release, err := l.instances.Lock(branch, version, "running")
	if err != nil {
		return err
	}
	defer release()

	cmd := exec.CommandContext(ctx, binary, "--name", playerName)
	cmd.Dir = instDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return domain.ErrCancelled
		}
		return fmt.Errorf("%w: game exited with error: %v", domain.ErrGame, err)
	}
	return nil
}
