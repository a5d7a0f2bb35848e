package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/config"
	"marketplace/cron"
	"marketplace/database"
	"marketplace/database/repository"
	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/routes"
	"marketplace/services/bookings"
	"marketplace/services/freelancer"
	"marketplace/services/matching"
	"marketplace/services/notification"
	"marketplace/services/payment"
	"marketplace/services/proposals"
	"marketplace/services/requests"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	utils.SetLogger(logger)
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	prometheus.MustRegister(notification.DeliveryFailures)
	stripe.Key = cfg.StripeKey

	// Storage.
	var (
		repos       *repository.Repositories
		mongoClient *mongo.Client
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		repos = repository.NewMemoryRepositories()
	default:
		mongoClient, err = database.Connect(rootCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		repos, err = repository.NewMongoRepositories(mongoClient, cfg.DatabaseName, cfg.MongoTransactions)
		if err != nil {
			logger.Fatal("main: failed to initialize repositories", zap.Error(err))
		}
	}

	// Match score cache.
	var (
		scorer       matching.Scorer = matching.PureScorer{}
		redisClients []*redis.Client
	)
	if cacheClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB); err != nil {
		logger.Warn("match score cache disabled", zap.Error(err))
	} else {
		scorer = matching.NewCachedScorer(cacheClient, cfg.MatchCacheTTL, logger)
		redisClients = append(redisClients, cacheClient)
	}

	// Push notifications.
	var pusher notification.Pusher
	if cfg.FirebaseCredentials != "" {
		fcm, err := utils.NewFCMClient(rootCtx, cfg.FirebaseCredentials)
		if err != nil {
			logger.Warn("push notifications disabled", zap.Error(err))
		} else {
			pusher = notification.NewFCMPusher(fcm)
		}
	}
	store, err := notification.NewStoreSink(repos.Notifications, repos.Devices, pusher, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize notification store", zap.Error(err))
	}

	// Background delivery: asynq when enabled, goroutines otherwise.
	var (
		sink       notification.Sink
		dispatcher notification.MatchDispatcher
		worker     *cron.Worker
		queue      *asynq.Client
		waiters    []func()
	)
	if cfg.QueueEnabled {
		redisOpts := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}
		queue = asynq.NewClient(redisOpts)
		sink = notification.NewQueueSink(queue)
		dispatcher = notification.NewQueueMatchDispatcher(queue)

		notifier, err := matching.NewNotifier(repos.Requests, repos.Freelancers, scorer, sink, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize match notifier", zap.Error(err))
		}
		worker = cron.NewWorker(redisOpts, store, notifier.Fanout, logger)
		worker.Start()
	} else {
		async := notification.NewAsyncSink(store, logger)
		sink = async
		notifier, err := matching.NewNotifier(repos.Requests, repos.Freelancers, scorer, sink, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize match notifier", zap.Error(err))
		}
		inline := notification.NewInlineDispatcher(notifier.Fanout, logger)
		dispatcher = inline
		waiters = append(waiters, inline.Wait, async.Wait)
	}

	// Services.
	requestService, err := requests.NewDefaultRequestService(repos, scorer, sink, dispatcher, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize request service", zap.Error(err))
	}
	proposalService, err := proposals.NewDefaultProposalService(repos, scorer, sink, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize proposal service", zap.Error(err))
	}
	bookingService, err := bookings.NewDefaultBookingService(repos, sink, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize booking service", zap.Error(err))
	}
	profileService, err := freelancer.NewDefaultProfileService(repos.Freelancers, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize freelancer service", zap.Error(err))
	}
	paymentService, err := payment.NewDefaultPaymentService(repos, payment.StripeSessions{}, sink, payment.Config{
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	}, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize payment service", zap.Error(err))
	}

	monitor := utils.NewHealthMonitor(redisClients, mongoClient, 60*time.Second)
	monitor.Start(rootCtx)

	handlerBundle := &handlers.HandlerBundle{
		Requests:      handlers.NewServiceRequestHandler(requestService),
		Proposals:     handlers.NewProposalHandler(proposalService),
		Bookings:      handlers.NewBookingHandler(bookingService),
		Freelancers:   handlers.NewFreelancerHandler(profileService),
		Notifications: handlers.NewNotificationHandler(notification.NewInbox(repos.Notifications, repos.Devices)),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Health:        &handlers.HealthHandler{Monitor: monitor},
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.RateLimit(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver), zap.Bool("queue", cfg.QueueEnabled))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	for _, wait := range waiters {
		wait()
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		_ = queue.Close()
	}
	stop()
	for _, c := range redisClients {
		_ = c.Close()
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(ctx)
	}
	logger.Info("main: server stopped gracefully")
}
