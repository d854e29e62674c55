// Package providers contains dependency injection providers for the
// ShelfTalk bot.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/shelftalk/shelftalk-bot/internal/config"
	"github.com/shelftalk/shelftalk-bot/internal/logger"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/store/sqlite"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second

// ProvideConfig loads and validates the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})

	log.Info("starting shelftalk bot",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)
	return log, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := sqlite.Open(cfg.StorePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("store opened", "path", cfg.StorePath())
	return &StoreHandle{Store: st}, nil
}

// ProvideLookupClient provides the external book lookup client.
func ProvideLookupClient(i do.Injector) (*lookup.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return lookup.NewClient(log.Logger,
		lookup.WithBaseURL(cfg.Lookup.BaseURL),
		lookup.WithTimeout(cfg.Lookup.Timeout),
	), nil
}
