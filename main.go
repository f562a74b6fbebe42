package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"courtmates_server/cache"
	"courtmates_server/config"
	"courtmates_server/controllers"
	"courtmates_server/middleware"
	"courtmates_server/routes"
	"courtmates_server/services"
	"courtmates_server/socket"
	"courtmates_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(utils.LoggerOptions{
		Level:       cfg.Logging.Level,
		ElasticURL:  cfg.Logging.ElasticURL,
		ServiceName: cfg.Logging.ServiceName,
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return err
	}

	logger.Info("initializing DynamoDB client", zap.String("endpoint", cfg.AWS.DynamoEndpoint))
	dynamoService := &services.DynamoService{
		Client: services.InitializeDynamoDBClient(awsCfg, cfg.AWS.DynamoEndpoint),
		Logger: logger.Named("dynamo"),
	}
	s3Service := services.NewS3Service(s3.NewFromConfig(awsCfg), cfg.AWS.Bucket, cfg.AWS.AvatarURLTTL)

	profileCache, closeCache, err := newProfileCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	userProfileService := services.NewUserProfileService(dynamoService, cfg.AWS.UsersTable, logger.Named("users"))
	resolver := services.NewPlayerProfileResolver(userProfileService, s3Service, profileCache, logger.Named("resolver"))
	matchStore := services.NewMatchStore(dynamoService, cfg.AWS.MatchesTable)

	feed, err := services.NewMatchFeed(matchStore, resolver, services.FeedOptions{
		Interval: cfg.Feed.PollInterval,
		HideFull: cfg.Feed.HideFull,
	}, logger.Named("feed"))
	if err != nil {
		return err
	}
	matchService := services.NewMatchService(matchStore, feed, resolver, logger.Named("matches"))

	liveFeed := socket.NewLiveFeed(feed, logger.Named("socket"))
	go liveFeed.Serve()
	defer liveFeed.Close()

	if err := feed.Start(); err != nil {
		return err
	}
	defer func() {
		if err := feed.Stop(); err != nil {
			logger.Warn("failed to stop match feed", zap.Error(err))
		}
	}()

	r := mux.NewRouter()
	r.Use(middleware.Stack(logger)...)

	routes.RegisterRoutes(r)
	routes.RegisterMatchRoutes(r, controllers.NewMatchController(matchService, resolver, logger))
	routes.RegisterUserProfileRoutes(r, controllers.NewUserProfileController(userProfileService, logger))
	routes.RegisterStorageRoutes(r, controllers.NewStorageController(s3Service, resolver, logger))
	r.Handle("/socket.io/", liveFeed.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.UserIDHeader, middleware.UserEmailHeader},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProfileCache picks Redis when a cache URL is configured and the
// in-process cache otherwise.
func newProfileCache(ctx context.Context, cfg config.Cache, logger *zap.Logger) (cache.ProfileCache, func(), error) {
	if cfg.URL == "" {
		logger.Info("using in-memory profile cache", zap.Int("maxEntries", cfg.MaxEntries))
		return cache.NewMemoryCache(cfg.MaxEntries, cfg.TTL), func() {}, nil
	}

	rc, err := cache.NewRedisCache(ctx, cfg.URL, cfg.TTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis profile cache")
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}, nil
}
