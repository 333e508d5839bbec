package bootstrap

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"perfume-advisor-be/internal/config"
	"perfume-advisor-be/internal/controller"
	"perfume-advisor-be/internal/handler"
	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/internal/repository/contract"
	"perfume-advisor-be/internal/repository/memory"
	redisRepo "perfume-advisor-be/internal/repository/redis"
	"perfume-advisor-be/internal/service"
	"perfume-advisor-be/internal/websocket"
	"perfume-advisor-be/pkg/conversation"
	"perfume-advisor-be/pkg/events"
	"perfume-advisor-be/pkg/formatter"
	"perfume-advisor-be/pkg/history"
	pktNats "perfume-advisor-be/pkg/nats"
)

type Container struct {
	// Controllers
	AdvisorController   controller.IAdvisorController
	ConversationHandler *handler.ConversationHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Advisor         *conversation.Advisor
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	// 1. Loggers
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() {
		_ = auditLogger.Sync()
		_ = sysLogger.Sync()
	})

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publisherService := service.NewPublisherService(pubSub, cfg.App.EventsTopic)
	eventPublisher := events.Publishers{publisherService}

	if cfg.Infra.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Infra.NatsURL, cfg.Infra.NatsRetention, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = append(eventPublisher, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	sinks := []history.Sink{history.PublisherSink{Publisher: eventPublisher}}

	// 3. Advisor (data is loaded later by Initialize)
	c.Advisor = conversation.NewAdvisor(conversation.Config{
		CatalogPath:    cfg.Data.CatalogPath,
		QuestionsPath:  cfg.Data.QuestionsPath,
		DedupByModel:   cfg.Data.DedupByModel,
		RootQuestionID: cfg.Data.RootQuestionID,
		Formatter: formatter.Options{
			BaseURL:            cfg.Data.ProductBaseURL,
			PlaceholderPicture: cfg.Data.PlaceholderPicture,
		},
		Logger: sysLogger,
	})

	// 4. Redis
	rdb := connectRedis(ctx, cfg.Infra.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 5. Sessions
	var sessionRepo contract.SessionRepository
	if cfg.Session.Store == "redis" && rdb != nil {
		sessionRepo = redisRepo.NewSessionRepository(rdb, c.Advisor, cfg.Session.TTL, sinks...)
		sysLogger.Info("BOOTSTRAP", "Using Redis session store", map[string]interface{}{"ttl": cfg.Session.TTL.String()})
	} else {
		if cfg.Session.Store == "redis" {
			sysLogger.Warn("BOOTSTRAP", "Redis unavailable, falling back to in-memory sessions", nil)
		}
		sessionRepo = memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.Cleanup)
	}

	// 6. Services
	advisorService := service.NewAdvisorService(c.Advisor, sessionRepo, eventPublisher, sysLogger, sinks...)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventsTopic, auditLogger, sysLogger)

	// 7. WebSocket Hub
	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)
	go c.WebSocketHub.Run(ctx)

	// 8. Controllers
	c.AdvisorController = controller.NewAdvisorController(advisorService)
	c.ConversationHandler = handler.NewConversationHandler(advisorService, c.WebSocketHub, sysLogger)

	return c
}

// connectRedis returns nil when Redis cannot be reached.
func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
