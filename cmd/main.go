package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	c "github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/circuitbreaker"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	healthgrpc "github.com/fjod/go_cart/storefront/internal/grpc"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", "error", err)
	}
	if err := repository.CreateIndexes(ctx, mongoDB); err != nil {
		log.Fatal("failed to create indexes", "error", err)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDBName)

	checker := healthgrpc.NewHealthChecker(cfg.HealthCheckPeriod, log)
	checker.Register("mongo", func(ctx context.Context) error {
		return mongoDB.Client().Ping(ctx, nil)
	})

	products, closeCatalog, err := openCatalog(ctx, cfg, mongoDB, log, checker)
	if err != nil {
		log.Fatal("failed to open catalog", "driver", cfg.CatalogDriver, "error", err)
	}
	defer closeCatalog()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", "addr", cfg.RedisAddr, "error", err)
	}
	checker.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	users := repository.NewUserRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)

	svc := service.NewServices(service.Stores{
		Users:    users,
		Products: products,
		Orders:   orders,
		Cache:    c.NewRedisCache(redisClient),
		Sessions: session.NewRedisStore(redisClient, cfg.SessionTTL),
	}, log, m)

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(
			orders,
			publisher.NewKafkaWriter(cfg.KafkaBrokers...),
			circuitbreaker.New(circuitbreaker.DefaultSettings("kafka"), log),
			log,
			m,
		)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox publisher started", "brokers", cfg.KafkaBrokers, "topic", publisher.Topic)
	}

	views, err := h.NewRenderer(log)
	if err != nil {
		log.Fatal("failed to load templates", "error", err)
	}
	handler := h.NewHandler(svc.Auth, svc.Catalog, svc.Cart, svc.Orders, views, log, h.CookieConfig{
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(handler, h.RouterConfig{
			RequestTimeout: cfg.RequestTimeout,
			Health:         checker,
			Gatherer:       reg,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go checker.Run(ctx)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", "port", cfg.GRPCPort, "error", err)
	}
	grpcServer := healthgrpc.NewServer(checker)
	go func() {
		log.Info("gRPC health server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server stopped", "error", err)
		}
	}()

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Error("failed to disconnect from MongoDB", "error", err)
	}
	log.Info("server exited")
}

// openCatalog picks the product store. SQLite runs its migrations on start;
// MongoDB can be seeded from a JSON file when the collection is empty.
func openCatalog(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database, log *logger.Logger, checker *healthgrpc.HealthChecker) (repository.ProductRepository, func(), error) {
	switch cfg.CatalogDriver {
	case config.CatalogSQLite:
		repo, err := repository.NewSQLiteProductRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		checker.Register("sqlite", repo.Ping)
		log.Info("catalog served from SQLite", "path", cfg.SQLitePath)
		return repo, func() { _ = repo.Close() }, nil

	case config.CatalogMongo:
		repo := repository.NewMongoProductRepository(mongoDB)
		if cfg.CatalogSeedFile != "" {
			seed, err := loadSeedFile(cfg.CatalogSeedFile)
			if err != nil {
				return nil, nil, err
			}
			n, err := repo.SeedIfEmpty(ctx, seed)
			if err != nil {
				return nil, nil, err
			}
			log.Info("catalog seed applied", "file", cfg.CatalogSeedFile, "inserted", n)
		}
		return repo, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
}

func loadSeedFile(path string) ([]*domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return products, nil
}
