package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/config"
	"github.com/shelftalk/shelftalk-bot/internal/conversation"
	"github.com/shelftalk/shelftalk-bot/internal/logger"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// ProvideGateway provides the chat transport. The real platform adapter is
// deployed as a separate collaborator; until it registers itself the
// channel-backed local gateway stands in.
func ProvideGateway(i do.Injector) (chat.Gateway, error) {
	return chat.NewLocalGateway(), nil
}

// ProvideProfileService provides profile management and the gate chain.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	return service.NewProfileService(st.Store, log.Logger, cfg.Bot.MessagesPerMinute), nil
}

// ProvideResolver provides the cache-first book resolver.
func ProvideResolver(i do.Injector) (*service.Resolver, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	client := do.MustInvoke[*lookup.Client](i)

	return service.NewResolver(st.Store, client, log.Logger), nil
}

// ProvideLibraryService provides list and manual-book management.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	return service.NewLibraryService(st.Store, log.Logger), nil
}

// ProvideListView provides list pagination.
func ProvideListView(i do.Injector) (*service.ListView, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	return service.NewListView(st.Store, log.Logger, cfg.Lists.PageSize), nil
}

// ProvideAdminService provides the moderation surface.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	return service.NewAdminService(st.Store, log.Logger, cfg.Bot.AdminUserID), nil
}

// ProvideConversationHandler provides the state machine handler.
func ProvideConversationHandler(i do.Injector) (*conversation.Handler, error) {
	log := do.MustInvoke[*logger.Logger](i)
	gateway := do.MustInvoke[chat.Gateway](i)

	return conversation.NewHandler(
		do.MustInvoke[*service.ProfileService](i),
		do.MustInvoke[*service.Resolver](i),
		do.MustInvoke[*service.LibraryService](i),
		do.MustInvoke[*service.ListView](i),
		do.MustInvoke[*service.AdminService](i),
		gateway,
		log.Logger,
	), nil
}
