package bootstrap

import (
	"context"
	"log"
	"os"

	"exchange-support-be/internal/config"
	"exchange-support-be/internal/controller"
	"exchange-support-be/internal/pkg/logger"
	"exchange-support-be/internal/repository/memory"
	"exchange-support-be/internal/repository/unitofwork"
	"exchange-support-be/internal/service"
	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/botkit/classifier"
	"exchange-support-be/pkg/botkit/orchestrator"
	"exchange-support-be/pkg/botkit/research"
	"exchange-support-be/pkg/botkit/specialist"
	"exchange-support-be/pkg/embedding"
	"exchange-support-be/pkg/llm/factory"
	"exchange-support-be/pkg/search"
	"exchange-support-be/pkg/txlookup"

	pktNats "exchange-support-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	InquiryNotifier service.IInquiryNotifierService

	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	stdLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	var inquiryNotifier service.IInquiryNotifierService
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		inquiryNotifier = service.NewInquiryNotifierService(natsSub, sysLogger)
	}

	// Redis
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

	// 5. Bot Pipeline
	engine := capability.NewEngine(llmProvider, stdLogger)

	webProvider := search.NewWebProvider(cfg.Search.PrimaryURL, cfg.Search.FallbackURL, cfg.Search.MaxResults, stdLogger)
	priceProvider := search.NewPriceProvider(cfg.Search.PriceAPIURL, rdb, stdLogger)
	combinedSearcher := search.NewCombined(webProvider, priceProvider, stdLogger)
	supportSearcher := search.NewSupportSite(webProvider, cfg.Bot.SupportDomain, stdLogger)

	researchCfg := research.DefaultConfig()
	researchCfg.MaxLoops = cfg.Bot.MaxSearchLoops
	researchCfg.MaxQueries = cfg.Bot.MaxSearchQueries
	researchCfg.AcceptScore = cfg.Bot.GraderAcceptScore
	researchCfg.OfficialSiteURL = cfg.Bot.OfficialSiteURL
	researchController := research.NewController(engine, combinedSearcher, researchCfg, stdLogger)

	retrievalService := service.NewRetrievalService(uowFactory, embeddingProvider)

	faqCfg := specialist.DefaultFAQConfig()
	faqCfg.Threshold = cfg.Bot.FAQThreshold
	faqCfg.StrictThreshold = cfg.Bot.FAQStrictThreshold

	simpleChat := specialist.NewSimpleChat(engine, stdLogger)
	faq := specialist.NewFAQ(retrievalService, supportSearcher, engine, faqCfg, stdLogger)
	transaction := specialist.NewTransaction(
		txlookup.NewHTTPService(cfg.Search.TxLookupURL),
		stdLogger,
	)

	historyRepo := memory.NewHistoryRepository()
	cls := classifier.New(engine, stdLogger)

	bot := orchestrator.New(
		cls,
		simpleChat,
		faq,
		transaction,
		researchController,
		service.NewHistoryHook(historyRepo),
		stdLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.KnowledgeTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.KnowledgeTopic,
		uowFactory,
		embeddingProvider,
	)

	chatService := service.NewChatService(uowFactory, bot, historyRepo, natsPub, cfg.Bot.ClarificationBudget)
	knowledgeService := service.NewKnowledgeService(uowFactory, publisherService)

	// 7. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService: consumerService,
		InquiryNotifier: inquiryNotifier,
		SysLogger:       sysLogger,
	}
}
