package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"glaunch/internal/domain"
	"glaunch/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry serves a scripted catalog backed by an httptest file server.
type fakeRegistry struct {
	mods    map[int]*source.ModDetail
	files   map[int][]source.FileRecord // newest first
	modErrs map[int]error               // scripted per-mod lookup failures
	baseURL string

	mu        sync.Mutex
	downloads int
}

func (f *fakeRegistry) ID() string   { return "fake" }
func (f *fakeRegistry) Name() string { return "Fake Registry" }

func (f *fakeRegistry) Search(ctx context.Context, q source.SearchQuery) (source.ResultPage, error) {
	return source.ResultPage{}, nil
}

func (f *fakeRegistry) GetMod(ctx context.Context, modID int) (*source.ModDetail, error) {
	if err := f.modErrs[modID]; err != nil {
		return nil, err
	}
	mod, ok := f.mods[modID]
	if !ok {
		return nil, fmt.Errorf("%w: mod %d", domain.ErrModNotFound, modID)
	}
	return mod, nil
}

func (f *fakeRegistry) GetFiles(ctx context.Context, modID int) ([]source.FileRecord, error) {
	return f.files[modID], nil
}

func (f *fakeRegistry) GetFile(ctx context.Context, modID, fileID int) (*source.FileRecord, error) {
	for _, fr := range f.files[modID] {
		if fr.ID == fileID {
			return &fr, nil
		}
	}
	return nil, fmt.Errorf("%w: file %d of mod %d", domain.ErrModNotFound, fileID, modID)
}

func (f *fakeRegistry) LatestFile(ctx context.Context, modID int) (*source.FileRecord, error) {
	files := f.files[modID]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: mod %d has no files", domain.ErrModNotFound, modID)
	}
	return &files[0], nil
}

func (f *fakeRegistry) Categories(ctx context.Context) ([]source.Category, error) {
	return nil, nil
}

func (f *fakeRegistry) DownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	return fmt.Sprintf("%s/files/%d/%d", f.baseURL, modID, fileID), nil
}

// newTestEngine wires an Engine over a fake registry and a pre-installed
// release/0 instance.
func newTestEngine(t *testing.T) (*Engine, *fakeRegistry, string) {
	t.Helper()

	reg := &fakeRegistry{
		mods: map[int]*source.ModDetail{
			42: {ID: 42, Slug: "better-maps", Name: "Better Maps", LatestFileID: 101},
			7:  {ID: 7, Slug: "core-lib", Name: "Core Library", LatestFileID: 30},
			9:  {ID: 9, Slug: "shiny-tools", Name: "Shiny Tools", LatestFileID: 55},
		},
		files: map[int][]source.FileRecord{
			42: {
				{ID: 101, ModID: 42, FileName: "better-maps-1.1.zip", Dependencies: []int{7}},
				{ID: 100, ModID: 42, FileName: "better-maps-1.0.zip", Dependencies: []int{7}},
			},
			7: {
				{ID: 30, ModID: 7, FileName: "core-lib-2.zip"},
				{ID: 29, ModID: 7, FileName: "core-lib-1.zip"},
			},
			9: {
				{ID: 55, ModID: 9, FileName: "shiny-tools-1.zip"},
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg.mu.Lock()
		reg.downloads++
		reg.mu.Unlock()
		w.Write([]byte("zip-bytes:" + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	reg.baseURL = server.URL

	state := &patchState{latest: map[string]int{"release": 5}}
	m := newTestManager(t, state)
	require.NoError(t, m.EnsureInstalled(context.Background(), domain.BranchRelease, domain.LatestVersion, nil))

	modsDir, err := m.ModsPath(domain.BranchRelease, domain.LatestVersion, true)
	require.NoError(t, err)

	return NewEngine(reg, NewDownloader(nil), m), reg, modsDir
}

func TestEngineInstall(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	var messages []string
	err := e.Install(ctx, 9, 0, domain.BranchRelease, 0, func(progress float64, msg string) {
		messages = append(messages, msg)
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip"))
	assert.NotEmpty(t, messages)

	installed, err := e.Installed(domain.BranchRelease, 0)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, 9, installed[0].ModID)
	assert.Equal(t, 55, installed[0].FileID)
	assert.True(t, installed[0].Enabled)
	assert.Equal(t, domain.BranchRelease, installed[0].Branch)
}

func TestEngineInstallDependencies(t *testing.T) {
	e, _, modsDir := newTestEngine(t)

	require.NoError(t, e.Install(context.Background(), 42, 0, domain.BranchRelease, 0, nil))

	assert.FileExists(t, filepath.Join(modsDir, "better-maps_m42_f101.zip"))
	assert.FileExists(t, filepath.Join(modsDir, "core-lib_m7_f30.zip"))
}

func TestEngineInstallDependencyKeepsErrorKind(t *testing.T) {
	e, reg, _ := newTestEngine(t)
	reg.modErrs = map[int]error{
		7: fmt.Errorf("%w: retry after 30s", domain.ErrRateLimited),
	}

	err := e.Install(context.Background(), 42, 0, domain.BranchRelease, 0, nil)
	require.Error(t, err)

	// A throttled dependency pull is reported as throttling, not as a
	// generic conflict.
	assert.ErrorIs(t, err, domain.ErrModConflict)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, domain.KindRateLimited, domain.Kind(err))
}

func TestEngineInstallNeverDowngradesDependency(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	// An older core-lib is already present.
	require.NoError(t, e.Install(ctx, 7, 29, domain.BranchRelease, 0, nil))
	assert.FileExists(t, filepath.Join(modsDir, "core-lib_m7_f29.zip"))

	require.NoError(t, e.Install(ctx, 42, 0, domain.BranchRelease, 0, nil))

	// The dependency pull must not touch the installed version.
	assert.FileExists(t, filepath.Join(modsDir, "core-lib_m7_f29.zip"))
	assert.NoFileExists(t, filepath.Join(modsDir, "core-lib_m7_f30.zip"))
}

func TestEngineInstallUpgradeReplacesVariant(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 42, 100, domain.BranchRelease, 0, nil))
	require.NoError(t, e.Install(ctx, 42, 101, domain.BranchRelease, 0, nil))

	// Exactly one variant remains after the upgrade.
	assert.NoFileExists(t, filepath.Join(modsDir, "better-maps_m42_f100.zip"))
	assert.FileExists(t, filepath.Join(modsDir, "better-maps_m42_f101.zip"))
}

func TestEngineInstallPreservesDisabledFlag(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 42, 100, domain.BranchRelease, 0, nil))
	require.NoError(t, e.Toggle(42, false, domain.BranchRelease, 0))

	require.NoError(t, e.Install(ctx, 42, 101, domain.BranchRelease, 0, nil))

	// The upgrade lands disabled because the user had disabled the mod.
	assert.FileExists(t, filepath.Join(modsDir, "better-maps_m42_f101.zip.disabled"))
	assert.NoFileExists(t, filepath.Join(modsDir, "better-maps_m42_f101.zip"))
	assert.NoFileExists(t, filepath.Join(modsDir, "better-maps_m42_f100.zip.disabled"))
}

func TestEngineInstallIdempotent(t *testing.T) {
	e, reg, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))
	before := reg.downloads
	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))
	assert.Equal(t, before, reg.downloads, "reinstalling the same file must not re-download")
}

func TestEngineInstallUnknownMod(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.Install(context.Background(), 999, 0, domain.BranchRelease, 0, nil)
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestEngineInstallInstanceMissing(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.Install(context.Background(), 9, 0, domain.BranchRelease, 3, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEngineInstallConcurrentSameMod(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "goroutine %d", i)
	}

	// Exactly one file on disk, whatever the interleaving.
	entries, err := os.ReadDir(modsDir)
	require.NoError(t, err)
	var modFiles []string
	for _, entry := range entries {
		if ParseModFileName(entry.Name()) != nil {
			modFiles = append(modFiles, entry.Name())
		}
	}
	assert.Equal(t, []string{"shiny-tools_m9_f55.zip"}, modFiles)
}

func TestEngineUninstall(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))
	require.NoError(t, e.Uninstall(9, domain.BranchRelease, 0))
	assert.NoFileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip"))

	// Idempotent.
	assert.NoError(t, e.Uninstall(9, domain.BranchRelease, 0))
}

func TestEngineUninstallRemovesDisabledVariant(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))
	require.NoError(t, e.Toggle(9, false, domain.BranchRelease, 0))
	require.NoError(t, e.Uninstall(9, domain.BranchRelease, 0))

	entries, err := os.ReadDir(modsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngineToggle(t *testing.T) {
	e, _, modsDir := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))

	require.NoError(t, e.Toggle(9, false, domain.BranchRelease, 0))
	assert.FileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip.disabled"))
	assert.NoFileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip"))

	// Toggling to the current state is a no-op.
	require.NoError(t, e.Toggle(9, false, domain.BranchRelease, 0))

	require.NoError(t, e.Toggle(9, true, domain.BranchRelease, 0))
	assert.FileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip"))
	assert.NoFileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip.disabled"))
}

func TestEngineToggleNotInstalled(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.Toggle(9, false, domain.BranchRelease, 0)
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestEngineToggleTamperedDirectory(t *testing.T) {
	e, _, modsDir := newTestEngine(t)

	// Someone placed both variants on disk by hand.
	require.NoError(t, os.WriteFile(filepath.Join(modsDir, "shiny-tools_m9_f55.zip"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(modsDir, "shiny-tools_m9_f55.zip.disabled"), []byte("b"), 0644))

	err := e.Toggle(9, false, domain.BranchRelease, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModConflict)

	// Nothing was renamed or removed.
	assert.FileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip"))
	assert.FileExists(t, filepath.Join(modsDir, "shiny-tools_m9_f55.zip.disabled"))
}

func TestEngineCheckUpdates(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Install(ctx, 42, 100, domain.BranchRelease, 0, nil))
	require.NoError(t, e.Install(ctx, 9, 0, domain.BranchRelease, 0, nil))

	stale, err := e.CheckUpdates(ctx, domain.BranchRelease, 0)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, 42, stale[0].ModID)
	assert.Equal(t, 100, stale[0].FileID)
	assert.Equal(t, 101, stale[0].LatestFileID)
}

func TestEngineCheckUpdatesEmpty(t *testing.T) {
	e, _, _ := newTestEngine(t)

	stale, err := e.CheckUpdates(context.Background(), domain.BranchRelease, 0)
	require.NoError(t, err)
	assert.Empty(t, stale)
}
