// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/ussd-go/internal/application/services"
	"github.com/AtRiskMedia/ussd-go/internal/domain/repositories"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/expr"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/persistence/menus"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/persistence/sessions"
	"github.com/AtRiskMedia/ussd-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	MenuService    *services.MenuService
	SessionService *services.SessionService
	EngineService  *services.EngineService
	AuthService    *services.AuthService
	Registry       *services.FunctionRegistry

	// Infrastructure dependencies
	Logger       *logging.ChanneledLogger
	Database     *database.Database
	SessionStore repositories.SessionStore
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger, db *database.Database, store repositories.SessionStore) *Container {
	menuRepo := menus.NewRepository(db.Conn)

	menuService := services.NewMenuService(menuRepo, config.MenuPath, logger)
	sessionService := services.NewSessionService(store, config.SessionTimeout, logger)
	registry := services.NewFunctionRegistry(logger)
	evaluator := expr.NewEvaluator(logger.Expr())

	engineService := services.NewEngineService(
		menuService,
		sessionService,
		registry,
		evaluator,
		logger,
		config.MaxScreenHops,
	)

	return &Container{
		MenuService:    menuService,
		SessionService: sessionService,
		EngineService:  engineService,
		AuthService:    services.NewAuthService(logger),
		Registry:       registry,

		Logger:       logger,
		Database:     db,
		SessionStore: store,
	}
}

// NewSessionStore builds the configured session store driver.
func NewSessionStore() (repositories.SessionStore, error) {
	return sessions.NewStore(sessions.Options{
		Driver:        config.SessionStoreDriver,
		RedisAddr:     config.RedisAddr,
		RedisPassword: config.RedisPassword,
		RedisDB:       config.RedisDB,
		RedisTTL:      config.RedisTTL,
	})
}
