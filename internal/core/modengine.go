package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"glaunch/internal/domain"
	"glaunch/internal/source"
)

// ModProgressFunc receives mod operation progress: fraction 0-1 (-1 when
// indeterminate) and a human message.
type ModProgressFunc func(progress float64, message string)

// Engine is the per-instance mod state machine: install, uninstall, enable,
// disable and update mods inside an instance's mods directory. The
// directory listing is authoritative; every query rescans rather than
// trusting an in-memory cache.
type Engine struct {
	registry   source.Registry
	downloader *Downloader
	instances  *Manager

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per (instance, modID)
}

// NewEngine creates a mod install engine over the given registry.
func NewEngine(registry source.Registry, downloader *Downloader, instances *Manager) *Engine {
	return &Engine{
		registry:   registry,
		downloader: downloader,
		instances:  instances,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing operations on one mod within one
// instance. Concurrent installs of the same mod wait on it instead of
// corrupting the destination file.
func (e *Engine) lockFor(branch domain.Branch, version, modID int) *sync.Mutex {
	key := domain.ModKey(branch, version, modID)

	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// Installed scans the instance's mods directory and returns the parsed
// records, one per mod file variant found.
func (e *Engine) Installed(branch domain.Branch, version int) ([]domain.ModRecord, error) {
	modsDir, err := e.instances.ModsPath(branch, version, false)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading mods directory: %v", domain.ErrFilesystem, err)
	}

	var records []domain.ModRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec := ParseModFileName(entry.Name())
		if rec == nil {
			continue
		}
		rec.Branch = branch
		rec.Version = version
		records = append(records, *rec)
	}
	return records, nil
}

// variants returns all on-disk file variants for one mod id.
func (e *Engine) variants(branch domain.Branch, version, modID int) ([]domain.ModRecord, error) {
	records, err := e.Installed(branch, version)
	if err != nil {
		return nil, err
	}
	var out []domain.ModRecord
	for _, r := range records {
		if r.ModID == modID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Install fetches a mod file into the instance's mods directory and
// recursively ensures its declared dependencies are present. A fileID of 0
// selects the registry's latest file. Dependencies already installed are
// never touched, whatever their version. Installs of the same mod on the
// same instance are serialized; a second caller waits and then observes the
// first caller's result.
func (e *Engine) Install(ctx context.Context, modID, fileID int, branch domain.Branch, version int, onProgress ModProgressFunc) error {
	if !e.instances.IsInstalled(branch, version) {
		return fmt.Errorf("%w: instance %s/%d is not installed", domain.ErrValidation, branch, version)
	}
	if err := e.install(ctx, modID, fileID, branch, version, onProgress, map[int]bool{modID: true}); err != nil {
		return fmt.Errorf("installing mod %d into %s/%d: %w", modID, branch, version, err)
	}
	return nil
}

func (e *Engine) install(ctx context.Context, modID, fileID int, branch domain.Branch, version int, onProgress ModProgressFunc, visited map[int]bool) error {
	emit := onProgress
	if emit == nil {
		emit = func(float64, string) {}
	}

	lock := e.lockFor(branch, version, modID)
	lock.Lock()
	defer lock.Unlock()

	detail, err := e.registry.GetMod(ctx, modID)
	if err != nil {
		return err
	}

	var file *source.FileRecord
	if fileID == 0 {
		file, err = e.registry.LatestFile(ctx, modID)
	} else {
		file, err = e.registry.GetFile(ctx, modID, fileID)
	}
	if err != nil {
		return err
	}

	existing, err := e.variants(branch, version, modID)
	if err != nil {
		return err
	}

	// Preserve the enabled flag across reinstalls and updates.
	enabled := true
	upToDate := false
	for _, rec := range existing {
		if !rec.Enabled {
			enabled = false
		}
		if rec.FileID == file.ID {
			upToDate = true
		}
	}

	if !upToDate {
		emit(0, fmt.Sprintf("downloading %s", detail.Name))

		url, err := e.registry.DownloadURL(ctx, modID, file.ID)
		if err != nil {
			return err
		}

		modsDir, err := e.instances.ModsPath(branch, version, true)
		if err != nil {
			return err
		}

		dest := filepath.Join(modsDir, ModFileName(detail.Slug, modID, file.ID, enabled))
		if _, err := e.downloader.Download(ctx, url, dest, func(p DownloadProgress) {
			emit(clampProgress(p.Percentage), fmt.Sprintf("downloading %s", detail.Name))
		}); err != nil {
			return err
		}

		// Drop superseded file variants now that the new one is in place.
		for _, rec := range existing {
			if rec.FileID == file.ID {
				continue
			}
			os.Remove(filepath.Join(modsDir, rec.FileName))
		}
	}

	for _, depID := range file.Dependencies {
		if visited[depID] {
			continue
		}
		visited[depID] = true

		present, err := e.variants(branch, version, depID)
		if err != nil {
			return err
		}
		if len(present) > 0 {
			// An installed dependency already satisfies the requirement;
			// never downgrade or replace it implicitly.
			continue
		}

		emit(-1, fmt.Sprintf("installing dependency %d", depID))
		if err := e.install(ctx, depID, 0, branch, version, onProgress, visited); err != nil {
			// Keep the cause in the chain so throttling and cancellation
			// retain their own classification.
			return fmt.Errorf("%w: dependency %d: %w", domain.ErrModConflict, depID, err)
		}
	}

	emit(1, fmt.Sprintf("installed %s", detail.Name))
	return nil
}

// Uninstall removes both possible suffix variants for a mod id. Idempotent:
// removing an absent mod succeeds.
func (e *Engine) Uninstall(modID int, branch domain.Branch, version int) error {
	lock := e.lockFor(branch, version, modID)
	lock.Lock()
	defer lock.Unlock()

	modsDir, err := e.instances.ModsPath(branch, version, false)
	if err != nil {
		return err
	}

	records, err := e.variants(branch, version, modID)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := os.Remove(filepath.Join(modsDir, rec.FileName)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: removing %s: %v", domain.ErrFilesystem, rec.FileName, err)
		}
	}
	return nil
}

// Toggle flips a mod between its enabled and disabled filename variants via
// an atomic rename. Both variants coexisting means the directory was
// tampered with externally; that surfaces as a conflict, never a silent
// overwrite.
func (e *Engine) Toggle(modID int, enabled bool, branch domain.Branch, version int) error {
	lock := e.lockFor(branch, version, modID)
	lock.Lock()
	defer lock.Unlock()

	modsDir, err := e.instances.ModsPath(branch, version, false)
	if err != nil {
		return err
	}

	records, err := e.variants(branch, version, modID)
	if err != nil {
		return err
	}

	switch len(records) {
	case 0:
		return fmt.Errorf("%w: mod %d is not installed in %s/%d", domain.ErrModNotFound, modID, branch, version)
	case 1:
		// proceed
	default:
		return fmt.Errorf("%w: mod %d has both enabled and disabled variants on disk", domain.ErrModConflict, modID)
	}

	rec := records[0]
	if rec.Enabled == enabled {
		return nil
	}

	target := ModFileName(rec.Slug, rec.ModID, rec.FileID, enabled)
	targetPath := filepath.Join(modsDir, target)
	if _, err := os.Stat(targetPath); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrModConflict, target)
	}

	if err := os.Rename(filepath.Join(modsDir, rec.FileName), targetPath); err != nil {
		return fmt.Errorf("%w: renaming %s: %v", domain.ErrFilesystem, rec.FileName, err)
	}
	return nil
}

// CheckUpdates compares each installed mod's file id against the registry's
// latest and returns the stale subset with LatestFileID populated. Updates
// are never applied automatically.
func (e *Engine) CheckUpdates(ctx context.Context, branch domain.Branch, version int) ([]domain.ModRecord, error) {
	records, err := e.Installed(branch, version)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var stale []domain.ModRecord
	for _, rec := range records {
		if seen[rec.ModID] {
			continue
		}
		seen[rec.ModID] = true

		latest, err := e.registry.LatestFile(ctx, rec.ModID)
		if err != nil {
			return stale, fmt.Errorf("checking mod %d: %w", rec.ModID, err)
		}
		if latest.ID != rec.FileID {
			rec.LatestFileID = latest.ID
			stale = append(stale, rec)
		}
	}
	return stale, nil
}
