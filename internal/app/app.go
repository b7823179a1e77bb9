package app

import (
	"context"

	"lingochat-backend/internal/capability"
	"lingochat-backend/internal/config"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/service"
	"lingochat-backend/internal/storage"
	"lingochat-backend/pkg/logger"
)

// App holds the services shared by the HTTP and MCP entry points.
type App struct {
	Store storage.Storage
	Hub   *notify.Hub
	Chat  *service.ChatService
	User  *service.UserService
}

// New wires storage, the AI provider and the services. A provider that
// cannot be built is logged and the app runs without one, so every AI
// operation is skipped.
func New(ctx context.Context, cfg *config.Config) *App {
	hub := notify.NewHub()
	store := storage.Open(cfg.Storage)

	chat := service.NewChatService(store, cfg.Processing, hub)
	if provider, err := newProvider(ctx, cfg, hub); err != nil {
		logger.Errorf("AI provider unavailable: %v", err)
		hub.Publish(notify.LevelError, "AI features unavailable", err.Error())
	} else {
		chat.SetProvider(provider)
	}

	user := service.NewUserService(store, notify.NewMailer(cfg.Email), hub)

	return &App{Store: store, Hub: hub, Chat: chat, User: user}
}

func newProvider(ctx context.Context, cfg *config.Config, hub *notify.Hub) (capability.Provider, error) {
	chatModel, err := capability.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return capability.NewLLMProvider(ctx, chatModel, cfg.Capabilities, hub)
}

func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		logger.Errorf("Failed to close storage: %v", err)
	}
}
