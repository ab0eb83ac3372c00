package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-promptscope-be/internal/config"
	"ai-promptscope-be/internal/controller"
	"ai-promptscope-be/internal/pkg/logger"
	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/internal/repository/implementation"
	"ai-promptscope-be/internal/repository/memory"
	redisrepo "ai-promptscope-be/internal/repository/redis"
	"ai-promptscope-be/internal/service"
	"ai-promptscope-be/pkg/facet/discovery"
	"ai-promptscope-be/pkg/llm/factory"
	pktNats "ai-promptscope-be/pkg/nats"
	"ai-promptscope-be/pkg/prompt"
	"ai-promptscope-be/pkg/trace"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NegotiationController controller.INegotiationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Session store: in-process by default, Redis when instances share
	// one session space.
	sessionTTL := time.Duration(cfg.Negotiation.SessionTTLMinutes) * time.Minute
	var sessionRepo contract.SessionRepository
	if cfg.Negotiation.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionRepo = redisrepo.NewSessionRepository(rdb, sessionTTL)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository(sessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Repositories
	requestRepo := implementation.NewNegotiationRequestRepository(db)
	traceRepo := implementation.NewTraceEventRepository(db)

	// 5. Domain Components
	ledger := trace.NewLedger(implementation.NewTraceStore(traceRepo), sysLogger)
	engine := discovery.NewEngine(llmProvider, cfg.Ai.LLMModel)
	compiler := prompt.NewCompiler(cfg.Negotiation.MaxScopeInstructions)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Negotiation.EventTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Negotiation.EventTopic,
		natsPub,
		sysLogger,
	)

	negotiationService := service.NewNegotiationService(
		requestRepo,
		sessionRepo,
		engine,
		compiler,
		llmProvider,
		ledger,
		publisherService,
		sysLogger,
		service.NegotiationServiceConfig{
			Model:             cfg.Ai.LLMModel,
			MaxFacetsPerRound: cfg.Negotiation.MaxFacetsPerRound,
			MaxRefineRounds:   cfg.Negotiation.MaxRefineRounds,
			GenerationTimeout: time.Duration(cfg.Ai.GenerationTimeoutSeconds) * time.Second,
		},
	)

	// 7. Controllers
	return &Container{
		NegotiationController: controller.NewNegotiationController(negotiationService),
		ConsumerService:       consumerService,
		Logger:                sysLogger,
	}
}
