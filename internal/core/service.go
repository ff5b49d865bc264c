package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"glaunch/internal/domain"
	"glaunch/internal/event"
	"glaunch/internal/source"
	"glaunch/internal/source/modportal"
	"glaunch/internal/source/modregistry"
	"glaunch/internal/source/patchserver"
	"glaunch/internal/storage/config"
	"glaunch/internal/storage/db"
)

// registryCredential is the credential slot holding the mod registry API key.
const registryCredential = "modregistry"

// ServiceConfig holds configuration for the core service.
type ServiceConfig struct {
	ConfigDir string // directory for configuration files
	DataDir   string // directory for database and instances
	APIKey    string // registry API key override (env wins over the stored key)
}

// Service is the boundary facade: it wires the version index, instance
// manager, mod engine and event bus together, wraps their errors with
// operation context, and publishes structured error events for every failed
// boundary call.
type Service struct {
	config     *config.Config
	db         *db.DB
	bus        *event.Bus
	downloader *Downloader
	index      *VersionIndex
	instances  *Manager
	engine     *Engine
	registry   source.Registry
	launcher   *Launcher
}

// NewService creates a new core service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "glaunch.db")
	database, err := db.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		if cred, err := database.Credential(registryCredential); err == nil && cred != nil {
			apiKey = cred.APIKey
		}
	}

	var registry source.Registry
	switch appConfig.RegistryBackend {
	case "graphql":
		registry = modportal.New(nil, apiKey)
	default:
		registry = modregistry.New(nil, apiKey)
	}

	ttl := time.Duration(0)
	if appConfig.VersionCacheTTL != "" {
		if d, err := time.ParseDuration(appConfig.VersionCacheTTL); err == nil {
			ttl = d
		}
	}

	instancesDir := appConfig.InstancesDir
	if instancesDir == "" {
		instancesDir = filepath.Join(cfg.DataDir, "Instances")
	}

	patches := patchserver.NewClient(nil, appConfig.PatchServerURL)
	downloader := NewDownloader(nil)
	index := NewVersionIndex(patches, ttl)
	instances := NewManager(instancesDir, downloader, index, patches)

	return &Service{
		config:     appConfig,
		db:         database,
		bus:        event.NewBus(),
		downloader: downloader,
		index:      index,
		instances:  instances,
		engine:     NewEngine(registry, downloader, instances),
		registry:   registry,
		launcher:   NewLauncher(instances, appConfig.GameBinary),
	}, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Bus returns the progress event bus for boundary subscribers.
func (s *Service) Bus() *event.Bus {
	return s.bus
}

// Config returns the loaded application config.
func (s *Service) Config() *config.Config {
	return s.config
}

// DB returns the database.
func (s *Service) DB() *db.DB {
	return s.db
}

// Registry returns the active mod registry backend.
func (s *Service) Registry() source.Registry {
	return s.registry
}

// Instances returns the instance manager.
func (s *Service) Instances() *Manager {
	return s.instances
}

// Engine returns the mod install engine.
func (s *Service) Engine() *Engine {
	return s.engine
}

// fail publishes a structured error event and returns the error unchanged.
func (s *Service) fail(message string, err error) error {
	s.bus.PublishError(domain.ErrorEvent{
		Kind:    domain.Kind(err),
		Message: message,
		Detail:  err.Error(),
	})
	return err
}

// record appends a history row, best-effort: failures are swallowed since
// audit data must never fail the operation it describes.
func (s *Service) record(entry db.HistoryEntry) {
	_ = s.db.RecordHistory(entry)
}

// EnsureInstalled makes (branch, version) present and current, streaming
// progress to the event bus.
func (s *Service) EnsureInstalled(ctx context.Context, branch domain.Branch, version int) error {
	wasInstalled := s.instances.IsInstalled(branch, version)

	err := s.instances.EnsureInstalled(ctx, branch, version, s.bus.PublishProgress)
	if err != nil {
		return s.fail(fmt.Sprintf("install %s/%d failed", branch, version), err)
	}

	op := db.OpInstall
	if wasInstalled {
		op = db.OpUpdate
	}
	installed, _ := s.instances.InstalledVersion(branch, version)
	s.record(db.HistoryEntry{
		Operation: op,
		Branch:    branch.String(),
		Version:   version,
		Detail:    strconv.Itoa(installed),
	})
	return nil
}

// EnsureInstalledAndLaunch validates the player name, makes the instance
// current, and runs the game. Validation failures surface before any
// network or filesystem work.
func (s *Service) EnsureInstalledAndLaunch(ctx context.Context, playerName string, branch domain.Branch, version int) error {
	if err := domain.ValidatePlayerName(playerName); err != nil {
		return s.fail("invalid player name", err)
	}

	if err := s.EnsureInstalled(ctx, branch, version); err != nil {
		return err
	}

	if err := s.launcher.Launch(ctx, branch, version, playerName); err != nil {
		return s.fail(fmt.Sprintf("launching %s/%d failed", branch, version), err)
	}

	// Only a session that actually started belongs in the history.
	s.record(db.HistoryEntry{
		Operation: db.OpLaunch,
		Branch:    branch.String(),
		Version:   version,
		Detail:    playerName,
	})
	return nil
}

// VersionList returns [0, latest, ..., 1] for a branch.
func (s *Service) VersionList(ctx context.Context, branch domain.Branch) []int {
	return s.index.List(ctx, branch)
}

// IsVersionInstalled reports whether (branch, version) is installed.
func (s *Service) IsVersionInstalled(branch domain.Branch, version int) bool {
	return s.instances.IsInstalled(branch, version)
}

// InstalledVersions lists installed versions for a branch.
func (s *Service) InstalledVersions(branch domain.Branch) []int {
	return s.instances.InstalledVersions(branch)
}

// NeedsUpdate reports whether the branch's latest-tracking instance is stale.
func (s *Service) NeedsUpdate(ctx context.Context, branch domain.Branch) bool {
	return s.instances.NeedsUpdate(ctx, branch)
}

// UpdateInfo derives pending-update details for a branch, or nil.
func (s *Service) UpdateInfo(ctx context.Context, branch domain.Branch) (*domain.UpdateInfo, error) {
	return s.instances.UpdateInfoFor(ctx, branch)
}

// DeleteInstance removes an instance, refusing while it is busy.
func (s *Service) DeleteInstance(branch domain.Branch, version int) error {
	if err := s.instances.Delete(branch, version); err != nil {
		return s.fail(fmt.Sprintf("deleting %s/%d failed", branch, version), err)
	}
	s.record(db.HistoryEntry{
		Operation: db.OpDelete,
		Branch:    branch.String(),
		Version:   version,
	})
	return nil
}

// modProgressEvent maps a mod engine progress callback onto the event bus.
// The final emit (progress 1) is the done stage so renderers show
// completion.
func modProgressEvent(progress float64, message string) domain.ProgressEvent {
	stage := domain.StageDownloading
	if progress >= 1 {
		stage = domain.StageDone
	}
	return domain.ProgressEvent{Stage: stage, Progress: progress, Message: message}
}

// InstallMod installs a mod file (0 = latest) into an instance, streaming
// progress to the event bus.
func (s *Service) InstallMod(ctx context.Context, modID, fileID int, branch domain.Branch, version int) error {
	err := s.engine.Install(ctx, modID, fileID, branch, version, func(progress float64, message string) {
		s.bus.PublishProgress(modProgressEvent(progress, message))
	})
	if err != nil {
		return s.fail(fmt.Sprintf("mod %d install failed", modID), err)
	}

	s.record(db.HistoryEntry{
		Operation: db.OpModInstall,
		Branch:    branch.String(),
		Version:   version,
		ModID:     modID,
		FileID:    fileID,
	})
	return nil
}

// UninstallMod removes a mod from an instance.
func (s *Service) UninstallMod(modID int, branch domain.Branch, version int) error {
	if err := s.engine.Uninstall(modID, branch, version); err != nil {
		return s.fail(fmt.Sprintf("mod %d uninstall failed", modID), err)
	}
	s.record(db.HistoryEntry{
		Operation: db.OpModUninstall,
		Branch:    branch.String(),
		Version:   version,
		ModID:     modID,
	})
	return nil
}

// ToggleMod enables or disables an installed mod.
func (s *Service) ToggleMod(modID int, enabled bool, branch domain.Branch, version int) error {
	if err := s.engine.Toggle(modID, enabled, branch, version); err != nil {
		return s.fail(fmt.Sprintf("mod %d toggle failed", modID), err)
	}
	s.record(db.HistoryEntry{
		Operation: db.OpModToggle,
		Branch:    branch.String(),
		Version:   version,
		ModID:     modID,
		Detail:    strconv.FormatBool(enabled),
	})
	return nil
}

// InstalledMods lists the mods installed in an instance.
func (s *Service) InstalledMods(branch domain.Branch, version int) ([]domain.ModRecord, error) {
	return s.engine.Installed(branch, version)
}

// ModUpdates returns the installed mods that have newer registry files.
func (s *Service) ModUpdates(ctx context.Context, branch domain.Branch, version int) ([]domain.ModRecord, error) {
	stale, err := s.engine.CheckUpdates(ctx, branch, version)
	if err != nil {
		return stale, s.fail("mod update check failed", err)
	}
	return stale, nil
}

// SearchMods searches the registry.
func (s *Service) SearchMods(ctx context.Context, query source.SearchQuery) (source.ResultPage, error) {
	page, err := s.registry.Search(ctx, query)
	if err != nil {
		return page, s.fail("registry search failed", err)
	}
	return page, nil
}

// ModCategories returns the registry category set.
func (s *Service) ModCategories(ctx context.Context) ([]source.Category, error) {
	cats, err := s.registry.Categories(ctx)
	if err != nil {
		return nil, s.fail("fetching categories failed", err)
	}
	return cats, nil
}

// SaveRegistryKey stores the registry API key.
func (s *Service) SaveRegistryKey(apiKey string) error {
	return s.db.SaveCredential(registryCredential, apiKey)
}

// DeleteRegistryKey removes the stored registry API key.
func (s *Service) DeleteRegistryKey() error {
	return s.db.DeleteCredential(registryCredential)
}

// HasRegistryKey reports whether an API key is stored.
func (s *Service) HasRegistryKey() bool {
	has, err := s.db.HasCredential(registryCredential)
	return err == nil && has
}
