package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"glaunch/internal/domain"
)

const (
	versionMarker = "version.txt"
	modsDirName   = "mods"
	savesDirName  = "saves"
)

// payloadSource derives artifact locations, satisfied by patchserver.Client.
type payloadSource interface {
	PayloadURL(branch domain.Branch, version int) string
}

// ProgressEventFunc receives staged progress events during an install.
type ProgressEventFunc func(domain.ProgressEvent)

// Manager owns the on-disk layout of installed game instances, keyed by
// (branch, version). All mutations of the instance tree go through it;
// readers rely only on the filesystem's rename atomicity.
//
// Game installs are single-flight: a capacity-1 gate admits one
// EnsureInstalled at a time per process, keeping bandwidth and progress
// reporting unambiguous. Mod downloads are not subject to this gate.
type Manager struct {
	root       string
	downloader *Downloader
	index      *VersionIndex
	payloads   payloadSource
	extractor  *Extractor

	gate chan struct{}

	mu   sync.Mutex
	busy map[string]string // instance key -> reason
}

// NewManager creates an instance manager rooted at root (the Instances
// directory).
func NewManager(root string, downloader *Downloader, index *VersionIndex, payloads payloadSource) *Manager {
	return &Manager{
		root:       root,
		downloader: downloader,
		index:      index,
		payloads:   payloads,
		extractor:  NewExtractor(),
		gate:       make(chan struct{}, 1),
		busy:       make(map[string]string),
	}
}

func instanceKey(branch domain.Branch, version int) string {
	return fmt.Sprintf("%s/%d", branch, version)
}

// Path returns the deterministic instance directory for (branch, version).
// Both inputs are constrained types, so no traversal is possible. When
// create is set the directory is made on demand.
func (m *Manager) Path(branch domain.Branch, version int, create bool) (string, error) {
	if version < 0 {
		return "", fmt.Errorf("%w: negative version %d", domain.ErrValidation, version)
	}
	path := filepath.Join(m.root, branch.String(), strconv.Itoa(version))
	if create {
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("%w: creating instance directory: %v", domain.ErrFilesystem, err)
		}
	}
	return path, nil
}

// ModsPath returns the mods directory of an instance, creating it when
// create is set.
func (m *Manager) ModsPath(branch domain.Branch, version int, create bool) (string, error) {
	base, err := m.Path(branch, version, false)
	if err != nil {
		return "", err
	}
	path := filepath.Join(base, modsDirName)
	if create {
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("%w: creating mods directory: %v", domain.ErrFilesystem, err)
		}
	}
	return path, nil
}

// IsInstalled reports whether (branch, version) has a complete install,
// judged by the presence of its version marker.
func (m *Manager) IsInstalled(branch domain.Branch, version int) bool {
	_, err := m.InstalledVersion(branch, version)
	return err == nil
}

// InstalledVersion reads the concrete version recorded in an instance's
// marker file.
func (m *Manager) InstalledVersion(branch domain.Branch, version int) (int, error) {
	path, err := m.Path(branch, version, false)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(filepath.Join(path, versionMarker))
	if err != nil {
		return 0, fmt.Errorf("reading version marker: %w", err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing version marker: %w", err)
	}
	return v, nil
}

// InstalledVersions lists the installed versions for a branch: the
// latest-tracking instance first when present, then pinned versions
// newest-first. Directories without a valid marker are skipped.
func (m *Manager) InstalledVersions(branch domain.Branch) []int {
	branchDir := filepath.Join(m.root, branch.String())
	entries, err := os.ReadDir(branchDir)
	if err != nil {
		return nil
	}

	var pinned []int
	hasLatest := false
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		if !m.IsInstalled(branch, n) {
			continue
		}
		if n == domain.LatestVersion {
			hasLatest = true
		} else {
			pinned = append(pinned, n)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(pinned)))
	if hasLatest {
		return append([]int{domain.LatestVersion}, pinned...)
	}
	return pinned
}

// NeedsUpdate reports whether the branch's latest-tracking instance is
// stale. Pinned instances are immutable snapshots and never need updates.
func (m *Manager) NeedsUpdate(ctx context.Context, branch domain.Branch) bool {
	current, err := m.InstalledVersion(branch, domain.LatestVersion)
	if err != nil {
		return false
	}

	latest := m.index.Resolve(ctx, branch)
	return latest > 0 && current < latest
}

// UpdateInfoFor derives the pending update for a branch's latest-tracking
// instance, or nil when it is current or not installed.
func (m *Manager) UpdateInfoFor(ctx context.Context, branch domain.Branch) (*domain.UpdateInfo, error) {
	current, err := m.InstalledVersion(branch, domain.LatestVersion)
	if err != nil {
		return nil, nil
	}

	latest := m.index.Resolve(ctx, branch)
	if latest <= 0 || current >= latest {
		return nil, nil
	}

	path, err := m.Path(branch, domain.LatestVersion, false)
	if err != nil {
		return nil, err
	}

	hasUserData := false
	for _, dir := range []string{modsDirName, savesDirName} {
		if info, err := os.Stat(filepath.Join(path, dir)); err == nil && info.IsDir() {
			hasUserData = true
			break
		}
	}

	return &domain.UpdateInfo{
		Branch:      branch,
		OldVersion:  current,
		NewVersion:  latest,
		HasUserData: hasUserData,
	}, nil
}

// Status reports the externally observable state of an instance.
func (m *Manager) Status(ctx context.Context, branch domain.Branch, version int) domain.InstanceStatus {
	if !m.IsInstalled(branch, version) {
		return domain.StatusNotInstalled
	}
	if version == domain.LatestVersion && m.NeedsUpdate(ctx, branch) {
		return domain.StatusUpdateAvailable
	}
	return domain.StatusInstalled
}

// Lock marks an instance busy for the given reason (install, game process)
// and returns a release function. A second Lock for the same instance fails
// with the holder's reason, which is how Delete refuses to race a running
// game or an in-flight download.
func (m *Manager) Lock(branch domain.Branch, version int, reason string) (func(), error) {
	key := instanceKey(branch, version)

	m.mu.Lock()
	defer m.mu.Unlock()

	if holder, ok := m.busy[key]; ok {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrBusy, key, holder)
	}
	m.busy[key] = reason

	return func() {
		m.mu.Lock()
		delete(m.busy, key)
		m.mu.Unlock()
	}, nil
}

// EnsureInstalled makes (branch, version) present and current on disk.
// Version 0 resolves through the version index. Idempotent: an
// already-current instance returns after a marker comparison, with no
// transfer. New content is staged under a temporary path and swapped in by
// rename only after the full payload is verified, so a crash or cancel
// leaves either the prior install or nothing.
func (m *Manager) EnsureInstalled(ctx context.Context, branch domain.Branch, version int, onProgress ProgressEventFunc) error {
	if version < 0 {
		return fmt.Errorf("%w: negative version %d", domain.ErrValidation, version)
	}
	emit := onProgress
	if emit == nil {
		emit = func(domain.ProgressEvent) {}
	}

	// Single-flight: one game install per process.
	select {
	case m.gate <- struct{}{}:
		defer func() { <-m.gate }()
	case <-ctx.Done():
		return domain.ErrCancelled
	}

	release, err := m.Lock(branch, version, "installing")
	if err != nil {
		return err
	}
	defer release()

	emit(domain.ProgressEvent{Stage: domain.StageResolving, Progress: 0, Message: "resolving version"})

	target := version
	if version == domain.LatestVersion {
		target = m.index.Resolve(ctx, branch)
		if target <= 0 {
			return fmt.Errorf("%w: cannot resolve latest version for %s", domain.ErrNetwork, branch)
		}
	}

	if current, err := m.InstalledVersion(branch, version); err == nil && current == target {
		emit(domain.ProgressEvent{Stage: domain.StageDone, Progress: 1, Message: "already up to date"})
		return nil
	}

	if err := m.install(ctx, branch, version, target, emit); err != nil {
		return fmt.Errorf("installing %s/%d: %w", branch, version, err)
	}

	emit(domain.ProgressEvent{Stage: domain.StageDone, Progress: 1, Message: fmt.Sprintf("installed version %d", target)})
	return nil
}

// install runs the fetch-stage-swap sequence for a resolved target version.
func (m *Manager) install(ctx context.Context, branch domain.Branch, version, target int, emit ProgressEventFunc) error {
	url := m.payloads.PayloadURL(branch, target)
	if !m.downloader.Exists(ctx, url) {
		return fmt.Errorf("%w: payload for version %d not available", domain.ErrNetwork, target)
	}

	branchDir := filepath.Join(m.root, branch.String())
	if err := os.MkdirAll(branchDir, 0755); err != nil {
		return fmt.Errorf("%w: creating branch directory: %v", domain.ErrFilesystem, err)
	}

	// Stage under the branch directory so the final rename stays on one
	// filesystem.
	stageDir, err := os.MkdirTemp(branchDir, ".staging-")
	if err != nil {
		return fmt.Errorf("%w: creating staging directory: %v", domain.ErrFilesystem, err)
	}
	defer os.RemoveAll(stageDir)

	archivePath := filepath.Join(stageDir, "game.zip")
	fileName := filepath.Base(url)

	_, err = m.downloader.Download(ctx, url, archivePath, func(p DownloadProgress) {
		emit(domain.ProgressEvent{
			Stage:       domain.StageDownloading,
			Progress:    clampProgress(p.Percentage),
			CurrentFile: fileName,
			Speed:       FormatSpeed(p.SpeedBPS),
			Downloaded:  p.Downloaded,
			Total:       p.TotalBytes,
		})
	})
	if err != nil {
		return err
	}

	emit(domain.ProgressEvent{Stage: domain.StageExtracting, Progress: -1, Message: "extracting payload"})

	payloadDir := filepath.Join(stageDir, "payload")
	if err := m.extractor.Extract(ctx, archivePath, payloadDir); err != nil {
		return err
	}
	os.Remove(archivePath)

	// Marker written last: a staging dir without it is never swapped in.
	marker := filepath.Join(payloadDir, versionMarker)
	if err := os.WriteFile(marker, []byte(strconv.Itoa(target)+"\n"), 0644); err != nil {
		return fmt.Errorf("%w: writing version marker: %v", domain.ErrFilesystem, err)
	}

	// Past this point the swap runs without suspension points, so
	// cancellation can no longer interrupt it mid-way.
	select {
	case <-ctx.Done():
		return domain.ErrCancelled
	default:
	}

	emit(domain.ProgressEvent{Stage: domain.StageSwapping, Progress: -1, Message: "activating new version"})

	instDir, err := m.Path(branch, version, false)
	if err != nil {
		return err
	}
	return m.swap(instDir, payloadDir)
}

// swap atomically replaces instDir with stagedDir, carrying user data
// (mods, saves) from the prior install across the update. Any failure
// reinstates the retired instance with its user data intact: directories
// already moved into the staging tree are moved back first, because the
// caller deletes that tree on the way out.
func (m *Manager) swap(instDir, stagedDir string) error {
	if _, err := os.Stat(instDir); os.IsNotExist(err) {
		if err := os.Rename(stagedDir, instDir); err != nil {
			return fmt.Errorf("%w: activating instance: %v", domain.ErrFilesystem, err)
		}
		return nil
	}

	oldDir := instDir + ".old-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.Rename(instDir, oldDir); err != nil {
		return fmt.Errorf("%w: retiring old instance: %v", domain.ErrFilesystem, err)
	}

	var carried []string
	for _, dir := range []string{modsDirName, savesDirName} {
		src := filepath.Join(oldDir, dir)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(stagedDir, dir)
		os.RemoveAll(dst)
		if err := os.Rename(src, dst); err != nil {
			m.undoSwap(instDir, oldDir, stagedDir, carried)
			return fmt.Errorf("%w: carrying over %s: %v", domain.ErrFilesystem, dir, err)
		}
		carried = append(carried, dir)
	}

	if err := os.Rename(stagedDir, instDir); err != nil {
		m.undoSwap(instDir, oldDir, stagedDir, carried)
		return fmt.Errorf("%w: activating new version: %v", domain.ErrFilesystem, err)
	}

	os.RemoveAll(oldDir)
	return nil
}

// undoSwap rolls a failed swap back: carried user-data directories return
// from the staging tree to the retired instance, then the retired instance
// returns to its live path.
func (m *Manager) undoSwap(instDir, oldDir, stagedDir string, carried []string) {
	for _, dir := range carried {
		os.Rename(filepath.Join(stagedDir, dir), filepath.Join(oldDir, dir))
	}
	os.Rename(oldDir, instDir)
}

// Delete removes an instance directory. It refuses while the instance is
// busy (downloading or running), reporting the conflict instead of
// corrupting a live install.
func (m *Manager) Delete(branch domain.Branch, version int) error {
	release, err := m.Lock(branch, version, "deleting")
	if err != nil {
		return err
	}
	defer release()

	path, err := m.Path(branch, version, false)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: deleting instance %s/%d: %v", domain.ErrFilesystem, branch, version, err)
	}
	return nil
}

func clampProgress(percentage float64) float64 {
	if percentage < 0 {
		return -1
	}
	return percentage / 100
}
