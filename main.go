package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"organica/internal/config"
	"organica/internal/handlers"
	"organica/internal/logging"
	"organica/internal/middleware"
	"organica/internal/repositories"
	"organica/internal/services"
	"organica/internal/sessions"
	"organica/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, cleanup, err := NewApp(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("failed to initialise application", zap.Error(err))
	}
	defer cleanup()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("storage", cfg.StorageBackend))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

// NewApp wires storage, sessions, the event publisher and all handlers into a
// Fiber app. cleanup releases every connection NewApp opened.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	storage, users, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := storage.Close(closeCtx); err != nil {
			log.Warn("failed to close storage", zap.Error(err))
		}
	})

	if cfg.SeedCatalog {
		if err := services.SeedCatalog(ctx, storage, log); err != nil {
			cleanup()
			return nil, func() {}, err
		}
	}

	store, closeStore, err := openSessions(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, closeStore)

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			// Order events are best effort; checkout works without a broker.
			log.Warn("RabbitMQ unavailable, order events disabled", zap.Error(err))
		} else {
			publisher = mq
			closers = append(closers, func() {
				if err := mq.Close(); err != nil {
					log.Warn("failed to close RabbitMQ client", zap.Error(err))
				}
			})
			if err := mq.ConsumeOrderEvents(rabbitmq.NewOrderEventLogger(log)); err != nil {
				log.Warn("failed to start order event consumer", zap.Error(err))
			}
		}
	}

	productService := services.NewProductService(storage)
	cartService := services.NewCartService(storage, store, log)
	wishlistService := services.NewWishlistService(storage, store)
	orderService := services.NewOrderService(storage, store, publisher, log)
	authService := services.NewAuthService(users, cfg.JWTSecret, log)

	app := fiber.New(fiber.Config{
		AppName:               "organica",
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api", middleware.Session(middleware.SessionConfig{
		CookieName: cfg.SessionCookie,
		MaxAge:     cfg.SessionTTL,
		Secure:     cfg.IsProduction(),
	}))

	handlers.NewHealthHandler(productService, storage.Name(), log).RegisterRoutes(api)
	handlers.NewProductHandler(productService, log).RegisterRoutes(api)
	handlers.NewCartHandler(cartService, log).RegisterRoutes(api)
	handlers.NewWishlistHandler(wishlistService, log).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(api)
	handlers.NewAuthHandler(authService, log).RegisterRoutes(api)

	return app, cleanup, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.Storage, repositories.UserRepository, error) {
	switch cfg.StorageBackend {
	case "gorm":
		db, err := repositories.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		storage := repositories.NewGORMStorage(db)
		if err := storage.AutoMigrate(ctx); err != nil {
			_ = storage.Close(ctx)
			return nil, nil, err
		}
		log.Info("database connected", zap.String("driver", cfg.DBDriver))
		return storage, repositories.NewGORMUserRepository(db), nil

	case "mongo":
		db, err := repositories.ConnectMongoDB(ctx, cfg.MongoURL, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		storage := repositories.NewMongoStorage(db)
		users := repositories.NewMongoUserRepository(db)
		if err := storage.CreateIndexes(ctx); err != nil {
			_ = storage.Close(ctx)
			return nil, nil, err
		}
		if err := users.CreateIndexes(ctx); err != nil {
			_ = storage.Close(ctx)
			return nil, nil, err
		}
		log.Info("MongoDB connected", zap.String("database", cfg.DBName))
		return storage, users, nil

	default:
		log.Warn("using in-memory storage; data is lost on restart")
		return repositories.NewMemoryStorage(), repositories.NewMemoryUserRepository(), nil
	}
}

func openSessions(ctx context.Context, cfg *config.Config) (sessions.Store, func(), error) {
	if cfg.SessionBackend != "redis" {
		return sessions.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return sessions.NewRedisStore(client, cfg.SessionTTL), func() { client.Close() }, nil
}
