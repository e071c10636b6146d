package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/persistence/menus"
)

// MenuService owns the active menu definition. The definition is immutable
// once published; reloads build a fresh menu and swap the pointer
// atomically so in-flight requests keep the version they started with.
type MenuService struct {
	active atomic.Pointer[menu.Menu]
	repo   *menus.Repository
	path   string
	logger *logging.ChanneledLogger
}

// NewMenuService creates a menu service backed by the given repository and
// file path. The repository may be nil for file-only deployments.
func NewMenuService(repo *menus.Repository, path string, logger *logging.ChanneledLogger) *MenuService {
	return &MenuService{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

// Active returns the currently published menu definition.
func (ms *MenuService) Active() *menu.Menu {
	return ms.active.Load()
}

// Publish validates and swaps in a new menu definition.
func (ms *MenuService) Publish(m *menu.Menu) error {
	if err := m.Validate(); err != nil {
		return err
	}
	ms.active.Store(m)
	ms.logger.System().Info("Menu definition published",
		"screens", len(m.Screens), "services", len(m.Services))
	return nil
}

// LoadFromFile loads the menu document from the configured path and
// publishes it.
func (ms *MenuService) LoadFromFile() error {
	m, err := menu.LoadFromFile(ms.path)
	if err != nil {
		return fmt.Errorf("failed to load menu from %s: %w", ms.path, err)
	}
	return ms.Publish(m)
}

// LoadFromDatabase builds the menu from the repository rows and publishes
// it.
func (ms *MenuService) LoadFromDatabase(ctx context.Context) error {
	if ms.repo == nil {
		return fmt.Errorf("no menu repository configured")
	}
	m, err := ms.repo.BuildMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to build menu from database: %w", err)
	}
	return ms.Publish(m)
}

// Load publishes the initial menu: the database when it holds screens,
// otherwise the menu file. A file-loaded menu is seeded into the database
// so the admin API starts from the same definition.
func (ms *MenuService) Load(ctx context.Context) error {
	if ms.repo != nil {
		if err := ms.LoadFromDatabase(ctx); err == nil {
			ms.logger.Startup().Info("Menu loaded from database")
			return nil
		}
	}

	if err := ms.LoadFromFile(); err != nil {
		return err
	}
	ms.logger.Startup().Info("Menu loaded from file", "path", ms.path)

	if ms.repo != nil {
		if err := ms.repo.ImportMenu(ctx, ms.Active()); err != nil {
			ms.logger.Database().Warn("Failed to seed menu into database", "error", err)
		}
	}
	return nil
}

// Reload rebuilds the menu from the repository and publishes it.
func (ms *MenuService) Reload(ctx context.Context) error {
	if ms.repo != nil {
		return ms.LoadFromDatabase(ctx)
	}
	return ms.LoadFromFile()
}

// Import replaces the stored definition with the given menu and publishes
// it.
func (ms *MenuService) Import(ctx context.Context, m *menu.Menu) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if ms.repo != nil {
		if err := ms.repo.ImportMenu(ctx, m); err != nil {
			return err
		}
	}
	ms.active.Store(m)
	return nil
}

// Export writes the active menu back to the configured file path.
func (ms *MenuService) Export() error {
	m := ms.Active()
	if m == nil {
		return fmt.Errorf("no active menu to export")
	}
	return m.SaveToFile(ms.path)
}

// Repository exposes the row-level CRUD for the admin API.
func (ms *MenuService) Repository() *menus.Repository {
	return ms.repo
}
