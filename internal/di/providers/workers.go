package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelftalk/shelftalk-bot/internal/backup"
	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/config"
	"github.com/shelftalk/shelftalk-bot/internal/conversation"
	"github.com/shelftalk/shelftalk-bot/internal/dispatch"
	"github.com/shelftalk/shelftalk-bot/internal/logger"
	"github.com/shelftalk/shelftalk-bot/internal/ratelimit"
	"github.com/shelftalk/shelftalk-bot/internal/scheduler"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// DispatcherHandle wraps the dispatcher and the gateway pump feeding it.
type DispatcherHandle struct {
	*dispatch.Dispatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DispatcherHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Dispatcher.Shutdown(ctx)
}

// ProvideDispatcher provides the per-user mailbox dispatcher, pumped by the
// gateway in the background.
func ProvideDispatcher(i do.Injector) (*DispatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*conversation.Handler](i)
	gateway := do.MustInvoke[chat.Gateway](i)

	// In-memory flood guard in front of the persisted per-minute window:
	// refills at the configured per-minute pace, with a short burst.
	limiter := ratelimit.New(float64(cfg.Bot.MessagesPerMinute)/60.0, cfg.Bot.MessagesPerMinute)
	d := dispatch.New(handler, limiter, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := gateway.Run(ctx, d.Dispatch); err != nil {
			log.Error("gateway stopped", "error", err)
		}
	}()

	log.Info("dispatcher started")
	return &DispatcherHandle{Dispatcher: d, cancel: cancel}, nil
}

// ProvideBackupManager provides the backup writer.
func ProvideBackupManager(i do.Injector) (*backup.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	if cfg.Sync.Remote != "" {
		// The sync collaborator picks archives up out of the backup dir;
		// credentials are only read and logged here.
		log.Info("backup sync configured", "remote", cfg.Sync.Remote)
	}
	return backup.NewManager(st.Store, cfg.BackupPath(), log.Logger), nil
}

// SchedulerHandle wraps the scheduler with its lifecycle.
type SchedulerHandle struct {
	*scheduler.Scheduler
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideScheduler provides the daily-job scheduler, running in the
// background.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*service.Resolver](i)
	gateway := do.MustInvoke[chat.Gateway](i)
	backups := do.MustInvoke[*backup.Manager](i)

	s := scheduler.New(
		st.Store,
		resolver,
		gateway,
		backups,
		log.Logger,
		cfg.Scheduler.RecommendHour,
		cfg.Scheduler.BackupHour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	log.Info("scheduler started",
		"recommend_hour", cfg.Scheduler.RecommendHour,
		"backup_hour", cfg.Scheduler.BackupHour,
	)
	return &SchedulerHandle{Scheduler: s, cancel: cancel}, nil
}
