package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelftalk/shelftalk-bot/internal/config"
	"github.com/shelftalk/shelftalk-bot/internal/httpapi"
	"github.com/shelftalk/shelftalk-bot/internal/logger"
)

// HTTPServerHandle wraps the ops HTTP server with its lifecycle.
type HTTPServerHandle struct {
	*httpapi.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the ops HTTP server, listening in the
// background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	srv := httpapi.New(st.Store, log.Logger, ":"+cfg.HTTP.Port)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("ops http server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
