// Package di provides dependency injection configuration for the ShelfTalk bot.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/shelftalk/shelftalk-bot/internal/config"
	"github.com/shelftalk/shelftalk-bot/internal/conversation"
	"github.com/shelftalk/shelftalk-bot/internal/di/providers"
	"github.com/shelftalk/shelftalk-bot/internal/logger"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideLookupClient)
	do.Provide(injector, providers.ProvideGateway)

	// Business services
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideListView)
	do.Provide(injector, providers.ProvideAdminService)
	do.Provide(injector, providers.ProvideConversationHandler)

	// Workers
	do.Provide(injector, providers.ProvideDispatcher)
	do.Provide(injector, providers.ProvideBackupManager)
	do.Provide(injector, providers.ProvideScheduler)

	// Ops surface
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization of
// everything the bot runs, surfacing startup failures (missing token,
// unopenable store) before the process reports ready.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if _, err := do.Invoke[*lookup.Client](injector); err != nil {
		return fmt.Errorf("lookup client: %w", err)
	}

	if _, err := do.Invoke[*service.ProfileService](injector); err != nil {
		return fmt.Errorf("profile service: %w", err)
	}
	if _, err := do.Invoke[*service.Resolver](injector); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if _, err := do.Invoke[*service.LibraryService](injector); err != nil {
		return fmt.Errorf("library service: %w", err)
	}
	if _, err := do.Invoke[*service.ListView](injector); err != nil {
		return fmt.Errorf("list view: %w", err)
	}
	if _, err := do.Invoke[*service.AdminService](injector); err != nil {
		return fmt.Errorf("admin service: %w", err)
	}
	if _, err := do.Invoke[*conversation.Handler](injector); err != nil {
		return fmt.Errorf("conversation handler: %w", err)
	}

	if _, err := do.Invoke[*providers.DispatcherHandle](injector); err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	if _, err := do.Invoke[*providers.SchedulerHandle](injector); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return fmt.Errorf("ops http server: %w", err)
	}

	return nil
}
