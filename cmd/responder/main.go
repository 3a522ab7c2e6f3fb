package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"feedback_responder/internal/assistant"
	"feedback_responder/internal/config"
	"feedback_responder/internal/domain"
	"feedback_responder/internal/marketplace"
	"feedback_responder/internal/publisher"
	"feedback_responder/internal/scheduler"
	"feedback_responder/internal/service"
	"feedback_responder/internal/storage/postgres"
)

const usage = `usage: responder [flags] <command>

commands:
  import-reviews     import unanswered reviews (use -count to cap)
  import-questions   import unanswered questions (use -count to cap)
  generate-reviews   draft replies for new reviews
  generate-questions draft replies for new questions
  publish-reviews    publish generated review replies
  publish-questions  publish generated question replies
  run                one full pipeline pass
  watch              loop the pipeline at the configured interval
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	actorID := flag.Int64("actor", 0, "acting user id")
	count := flag.Int("count", 0, "items to import (0 = all available)")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Reply events are optional: without a broker URL the pipeline runs
	// without emitting them.
	var replyPublisher service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		replyPublisher = rabbitMQ
	}

	// Initialize stores
	shopStore := postgres.NewShopStore(db)
	productStore := postgres.NewProductStore(db)
	reviewStore := postgres.NewReviewStore(db)
	questionStore := postgres.NewQuestionStore(db)
	topicStore := postgres.NewTopicStore(db)
	txManager := postgres.NewTransactionManager(db)

	// External clients
	market := marketplace.New(marketplace.Config{
		FeedbackBaseURL: cfg.Marketplace.FeedbackBaseURL,
		ContentBaseURL:  cfg.Marketplace.ContentBaseURL,
		Timeout:         cfg.Marketplace.Timeout,
	}, logger)

	llm := assistant.New(assistant.Config{
		BaseURL:     cfg.Assistant.BaseURL,
		APIKey:      cfg.Assistant.APIKey,
		Model:       cfg.Assistant.Model,
		Temperature: cfg.Assistant.Temperature,
		MaxTokens:   cfg.Assistant.MaxTokens,
	})

	// Services
	shops := service.NewShopService(shopStore, market, txManager, service.OwnerAccess{}, logger)
	enricher := service.NewEnrichService(market, productStore, logger, cfg.Import)
	importer := service.NewImportService(market, productStore, reviewStore, questionStore, enricher, txManager, logger, cfg.Import)
	generator := service.NewGenerateService(reviewStore, questionStore, topicStore, llm, logger, cfg.Generation)
	pub := service.NewPublishService(market, reviewStore, questionStore, replyPublisher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	actor := &domain.Actor{ID: *actorID}

	shop, err := shops.ActiveShop(ctx, actor)
	if err != nil {
		logger.Error("failed to resolve active shop", "actor_id", actor.ID, "error", err)
		os.Exit(1)
	}
	logger.Info("resolved active shop", "shop_id", shop.ID, "name", shop.Name)

	pipeline := &pipelineRunner{
		shop:      shop,
		importer:  importer,
		generator: generator,
		publisher: pub,
	}

	switch command {
	case "import-reviews":
		_, err = importer.ImportReviews(ctx, shop, *count)
	case "import-questions":
		_, err = importer.ImportQuestions(ctx, shop, *count)
	case "generate-reviews":
		_, err = generator.GenerateReviews(ctx, shop)
	case "generate-questions":
		_, err = generator.GenerateQuestions(ctx, shop)
	case "publish-reviews":
		_, err = pub.PublishReviews(ctx, shop)
	case "publish-questions":
		_, err = pub.PublishQuestions(ctx, shop)
	case "run":
		err = pipeline.Run(ctx)
	case "watch":
		sched := scheduler.NewScheduler(pipeline, cfg.Pipeline.Interval, cfg.Pipeline.RunTimeout, logger)
		err = sched.Start(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

// pipelineRunner chains the stages for one shop: import both kinds, draft
// replies, publish them. Stage errors do not stop the later stages.
type pipelineRunner struct {
	shop      *domain.Shop
	importer  *service.ImportService
	generator *service.GenerateService
	publisher *service.PublishService
}

func (p *pipelineRunner) Run(ctx context.Context) error {
	var errs []error

	if _, err := p.importer.ImportReviews(ctx, p.shop, 0); err != nil {
		errs = append(errs, fmt.Errorf("import reviews: %w", err))
	}
	if _, err := p.importer.ImportQuestions(ctx, p.shop, 0); err != nil {
		errs = append(errs, fmt.Errorf("import questions: %w", err))
	}
	if _, err := p.generator.GenerateReviews(ctx, p.shop); err != nil {
		errs = append(errs, fmt.Errorf("generate reviews: %w", err))
	}
	if _, err := p.generator.GenerateQuestions(ctx, p.shop); err != nil {
		errs = append(errs, fmt.Errorf("generate questions: %w", err))
	}
	if _, err := p.publisher.PublishReviews(ctx, p.shop); err != nil {
		errs = append(errs, fmt.Errorf("publish reviews: %w", err))
	}
	if _, err := p.publisher.PublishQuestions(ctx, p.shop); err != nil {
		errs = append(errs, fmt.Errorf("publish questions: %w", err))
	}

	return errors.Join(errs...)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
