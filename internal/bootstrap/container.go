package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"chatpulse/internal/config"
	"chatpulse/internal/controller"
	"chatpulse/internal/handler"
	"chatpulse/internal/model"
	"chatpulse/internal/pkg/logger"
	"chatpulse/internal/repository/contract"
	"chatpulse/internal/repository/implementation"
	"chatpulse/internal/repository/memory"
	"chatpulse/internal/service"
	"chatpulse/internal/websocket"
	"chatpulse/pkg/database"
	pktNats "chatpulse/pkg/nats"
	"chatpulse/pkg/realtime"
	"chatpulse/pkg/suggestion"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const planTTL = 2 * time.Hour

type Container struct {
	// Controllers
	PlanController    controller.IPlanController
	HistoryController controller.IHistoryController
	SyncController    controller.ISyncController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SyncService     service.ISyncService

	// WebSockets
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Options lets callers (mostly tests) swap infrastructure the container would
// otherwise build from config.
type Options struct {
	Logger           logger.ILogger
	RealtimeLogger   logger.ILogger
	TransportFactory realtime.TransportFactory
	HistoryStore     contract.KVStore
}

func NewContainer(cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := opts.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	rtLogger := opts.RealtimeLogger
	if rtLogger == nil {
		rtLogger = logger.NewIsolatedLogger(cfg.App.RealtimeLogFilePath)
	}
	c.Logger = sysLogger

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		rdb = connectRedis(cfg.App.RedisURL)
		if rdb != nil {
			c.closers = append(c.closers, func() { rdb.Close() })
		}
	}

	var republisher service.EventRepublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			republisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	historyStore := opts.HistoryStore
	if historyStore == nil {
		store, closer, err := newHistoryStore(cfg, rdb)
		if err != nil {
			c.Close()
			return nil, err
		}
		historyStore = store
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, rtLogger)

	// 4. Services
	publisherService := service.NewPublisherService(service.LiveTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, service.LiveTopic, wsHub, republisher, sysLogger)

	planRepo := memory.NewPlanRepository(planTTL)
	planService := service.NewPlanService(planRepo, publisherService, sysLogger)

	engine := suggestion.New(historyStore, suggestion.WithLogger(sysLogger))
	suggestionService := service.NewSuggestionService(engine, publisherService, sysLogger)

	syncService := service.NewSyncService(cfg.Sync, opts.TransportFactory, publisherService, sysLogger, rtLogger)

	// 5. Controllers
	c.PlanController = controller.NewPlanController(planService)
	c.HistoryController = controller.NewHistoryController(suggestionService)
	c.SyncController = controller.NewSyncController(syncService)
	c.LiveHandler = handler.NewLiveHandler(wsHub, rtLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.SyncService = syncService

	return c, nil
}

// Start runs the hub and the live event forwarder until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close disconnects sync sessions and releases infrastructure in reverse order.
func (c *Container) Close() {
	if c.SyncService != nil {
		c.SyncService.Shutdown()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if c.Logger != nil {
		c.Logger.Sync()
	}
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func newHistoryStore(cfg *config.Config, rdb *redis.Client) (contract.KVStore, func(), error) {
	switch cfg.History.Backend {
	case config.HistoryBackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("history backend redis needs a reachable REDIS_URL")
		}
		return implementation.NewRedisKVStore(rdb, "chatpulse:"), nil, nil

	case config.HistoryBackendPostgres:
		db, err := openDatabase(cfg.Database.Connection)
		if err != nil {
			return nil, nil, err
		}
		return implementation.NewGormKVStore(db), func() { database.Close(db) }, nil

	case config.HistoryBackendMemory, "":
		return memory.NewKVStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

func openDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("history backend postgres needs DB_CONNECTION_STRING")
	}
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to GORM DB: %w", err)
	}
	if err := database.Migrate(db, &model.KVEntry{}); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
