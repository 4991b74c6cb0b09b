package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conduit/internal/auth"
	"conduit/internal/cache"
	"conduit/internal/config"
	"conduit/internal/database"
	"conduit/internal/handler"
	"conduit/internal/queue"
	"conduit/internal/redis"
	"conduit/internal/repository"
	"conduit/internal/service"
	"conduit/internal/storage"
	"conduit/internal/worker"
)

const rsaKeyBits = 2048

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// 3. Optional Redis: feed cache, tag cache, article events
	var (
		feeds     cache.FeedCache
		tags      cache.TagCache
		publisher queue.Publisher
		rdb       *redis.Client
	)
	if cfg.RedisEnabled() {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		feeds, tags, publisher = redisStack(rdb, cfg.FeedCacheEnabled)
	} else {
		log.Println("[Server] REDIS_URL not set: caching and article events disabled")
	}

	// 4. Token signing keys
	keys, err := signingKeys(cfg)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenIssuer(keys, cfg.SessionTime)

	// 5. Repositories and services
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	userService := service.NewUserService(userRepo, tokens, service.NewBcryptHasher())
	toggle := service.NewMembershipToggle(articleRepo, followRepo, feeds)
	query := service.NewArticleQueryEngine(userRepo, articleRepo, feeds)
	registry := service.NewTagRegistry(tagRepo, tags)
	articleService := service.NewArticleService(articleRepo, query, registry, toggle, publisher)
	commentService := service.NewCommentService(commentRepo, userRepo, query)
	profileService := service.NewProfileService(userRepo, toggle)

	routes := RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService),
		ProfileHandler: handler.NewProfileHandler(profileService),
		ArticleHandler: handler.NewArticleHandler(articleService, query),
		CommentHandler: handler.NewCommentHandler(commentService),
		TagHandler:     handler.NewTagHandler(registry),
		Sessions:       auth.NewSessionResolver(tokens, userRepo),
	}

	if cfg.StorageEnabled() {
		store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init object storage: %w", err)
		}
		routes.MediaHandler = handler.NewMediaHandler(service.NewMediaService(store, userService))
	}

	// 6. Feed fan-out workers
	if rdb != nil && feeds != nil {
		manager := worker.NewManager(
			queue.NewConsumer(rdb.Client),
			worker.NewHandler(feeds, followRepo),
			worker.ManagerConfig{WorkerCount: cfg.WorkerCount},
		)
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}

	// 7. Serve until signalled
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// redisStack builds the Redis-backed caches. Article events are published
// only when the feed cache that consumes them is on.
func redisStack(rdb *redis.Client, feedCacheEnabled bool) (cache.FeedCache, cache.TagCache, queue.Publisher) {
	tags := cache.NewTagCache(rdb.Client)
	if !feedCacheEnabled {
		log.Println("[Server] Feed cache disabled: article events not published")
		return nil, tags, nil
	}
	return cache.NewFeedCache(rdb.Client), tags, queue.NewPublisher(rdb.Client)
}

// signingKeys uses the configured HMAC secret, or generates an RSA pair that
// lives only as long as this process.
func signingKeys(cfg *config.Config) (auth.KeyProvider, error) {
	if cfg.JWTSecret != "" {
		return auth.NewHMACKeyProvider(cfg.JWTSecret), nil
	}
	log.Println("[Server] JWT_SECRET not set: generating RSA key pair, tokens will not survive a restart")
	keys, err := auth.GenerateRSAKeyProvider(rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing keys: %w", err)
	}
	return keys, nil
}
