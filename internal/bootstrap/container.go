package bootstrap

import (
	"context"
	"errors"

	"ai-notecanvas/internal/config"
	"ai-notecanvas/internal/controller"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/repository"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/internal/repository/memory"
	"ai-notecanvas/internal/service"
	"ai-notecanvas/internal/websocket"
	"ai-notecanvas/pkg/events"
	"ai-notecanvas/pkg/llm"
	"ai-notecanvas/pkg/llm/perplexity"
	pktNats "ai-notecanvas/pkg/nats"
	"ai-notecanvas/pkg/secret"

	"github.com/ThreeDotsLabs/watermill"
)

type Container struct {
	// Controllers
	CanvasController    controller.ICanvasController
	ConnectController   controller.IConnectController
	ChatController      controller.IChatController
	WorkspaceController controller.IWorkspaceController
	AnalysisController  controller.IAnalysisController
	ExportController    controller.IExportController

	// Core
	Logger        logger.ILogger
	Store         service.IGraphStore
	ExportService service.IExportService
	Persistent    bool

	// Background components (run by the serve command)
	Bus          *events.Bus
	WebSocketHub *websocket.Hub
	Mirror       *pktNats.Publisher

	kv     contract.KVStore
	titles service.ITitleScheduler
}

// NewContainer wires the application and loads the saved canvas. Storage
// problems never stop startup: the session falls back to memory.
func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Storage
	kv, persistent := OpenKVStore(ctx, cfg.Storage, sysLogger)
	sealer := secret.NewSealer(cfg.Keys.AppSecret)
	if sealer == nil && persistent {
		sysLogger.Warn("Bootstrap", "APP_SECRET is empty, the API key is stored unsealed", nil)
	}

	// 2. Event Bus
	bus := events.NewBus(watermill.NewStdLogger(false, false))

	// 3. Graph store
	store := service.NewGraphStore(repository.NewNoteDB(kv, sealer), bus, sysLogger)
	if err := store.LoadInitialData(ctx); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to load saved canvas, running in memory for this session", map[string]interface{}{
			"error": errors.Join(repository.ErrPersistenceUnavailable, err).Error(),
		})
		_ = store.Close()
		_ = kv.Close()

		kv, persistent = memory.NewKVStore(), false
		store = service.NewGraphStore(repository.NewNoteDB(kv, sealer), bus, sysLogger)
		if err := store.LoadInitialData(ctx); err != nil {
			return nil, err
		}
	}

	// 4. LLM
	provider := perplexity.NewProvider(cfg.Ai.BaseURL, cfg.Ai.Timeout)
	gateway := llm.NewGateway(provider, cfg.Keys.Perplexity, sysLogger)

	// 5. Services
	titles := service.NewTitleScheduler(store, gateway, cfg.Ai.TitleDebounce, sysLogger)
	nodeService := service.NewNodeService(store, titles)
	workspaceService := service.NewWorkspaceService(store)
	connectService := service.NewConnectService(store, gateway, bus, sysLogger)
	chatService := service.NewChatService(store, gateway, sysLogger)
	analysisService := service.NewAnalysisService(store, gateway)
	exportService := service.NewExportService(store)

	// 6. Push + mirror
	wsHub := websocket.NewHub(logger.NewIsolatedLogger("logs/websocket.log"))

	var mirror *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS, event mirror disabled", map[string]interface{}{
				"url":   cfg.App.NatsURL,
				"error": err.Error(),
			})
		} else {
			mirror = pub
		}
	}

	return &Container{
		CanvasController:    controller.NewCanvasController(nodeService, workspaceService),
		ConnectController:   controller.NewConnectController(connectService),
		ChatController:      controller.NewChatController(chatService),
		WorkspaceController: controller.NewWorkspaceController(workspaceService),
		AnalysisController:  controller.NewAnalysisController(analysisService),
		ExportController:    controller.NewExportController(exportService),

		Logger:        sysLogger,
		Store:         store,
		ExportService: exportService,
		Persistent:    persistent,

		Bus:          bus,
		WebSocketHub: wsHub,
		Mirror:       mirror,

		kv:     kv,
		titles: titles,
	}, nil
}

// Close stops timers, drains pending writes, then releases storage and
// transports. Call it once the HTTP server has stopped.
func (c *Container) Close() error {
	c.titles.Stop()
	storeErr := c.Store.Close()
	kvErr := c.kv.Close()
	busErr := c.Bus.Close()
	if c.Mirror != nil {
		c.Mirror.Close()
	}
	return errors.Join(storeErr, kvErr, busErr)
}
