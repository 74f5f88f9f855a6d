package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	authRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/auth/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/httpapi"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	locRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	permH "github.com/fekuna/omnipos-inventory-service/internal/permission/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	prodH "github.com/fekuna/omnipos-inventory-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/search"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type repositories struct {
	inventory inventory.Repository
	product   product.Repository
	location  location.Repository
	users     auth.UserRepository
	close     func()
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Repositories
	repos := openRepositories(ctx, cfg, appLogger)
	defer repos.close()

	// 4. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Elasticsearch, optional
	var esClient *search.Client
	if cfg.Elastic.Enabled {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, product search uses SQL", zap.Error(err))
			esClient = nil
		} else if err := prodUCPkg.EnsureIndex(ctx, esClient); err != nil {
			appLogger.Warn("Could not create products index", zap.Error(err))
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Kafka
	var publisher inventory.EventPublisher
	var consumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.StockTopic})
		defer producer.Close()
		publisher = producer

		consumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SalesTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Kafka configured",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("sales_topic", cfg.Kafka.SalesTopic),
			zap.String("stock_topic", cfg.Kafka.StockTopic),
		)
	}

	// 7. Location directory
	directory := location.NewDirectory(repos.location, appLogger)
	if err := directory.Load(ctx); err != nil {
		// permission checks that need a location type fail until a refresh succeeds
		appLogger.Error("Initial location load failed", zap.Error(err))
	}
	go directory.Run(ctx, cfg.Locations.RefreshInterval)

	// 8. UseCases
	prodUC := prodUCPkg.NewProductUseCase(repos.product, redisClient, esClient, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(repos.inventory, redisClient, publisher, prodUC, appLogger)
	evaluator := permission.NewEvaluator(directory, appLogger)
	authService := auth.NewService(
		repos.users,
		auth.NewRedisSessionStore(redisClient),
		auth.NewTokenManager(cfg.JWT.SecretKey, cfg.Session.TTL),
		cfg.Session.TTL,
		appLogger,
	)

	// 9. Listener
	if consumer != nil {
		go invListenerPkg.NewSalesListener(consumer, invUC, appLogger).Start(ctx)
	}

	// 10. gRPC server
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(authService.UnaryServerInterceptor(
			"/grpc.health.v1.Health/Check",
		)),
	)
	inventoryv1.RegisterInventoryServiceServer(grpcServer, invH.NewInventoryHandler(invUC, prodUC, evaluator, appLogger))
	inventoryv1.RegisterProductServiceServer(grpcServer, prodH.NewProductHandler(prodUC, evaluator, appLogger))
	inventoryv1.RegisterPermissionServiceServer(grpcServer, permH.NewPermissionHandler(evaluator, directory, appLogger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 11. HTTP server
	exporter := report.NewExporter(prodUC, invUC, directory, appLogger)
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           httpapi.NewRouter(httpapi.NewHandler(authService, evaluator, exporter, appLogger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, appLogger logger.ZapLogger) *repositories {
	if cfg.Store.Driver == "memory" {
		appLogger.Warn("Using in-memory store, data is lost on restart")
		mem := invRepoPkg.NewMemoryRepository()
		return &repositories{
			inventory: mem,
			product:   mem,
			location: locRepoPkg.NewMemoryRepository(
				model.Location{ID: 1, Name: "Main Warehouse", Type: model.LocationWarehouse, Status: model.LocationActive},
				model.Location{ID: 2, Name: "Main Showroom", Type: model.LocationShowroom, Status: model.LocationActive},
			),
			users: authRepoPkg.NewMemoryRepository(bootstrapUsers(cfg, appLogger)...),
			close: func() {},
		}
	}

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			appLogger.Fatal("Could not run migrations", zap.Error(err))
		}
	}

	return &repositories{
		inventory: invRepoPkg.NewPGRepository(db),
		product:   prodRepoPkg.NewPGRepository(db),
		location:  locRepoPkg.NewPGRepository(db),
		users:     authRepoPkg.NewPGRepository(db),
		close:     func() { db.Close() },
	}
}

func bootstrapUsers(cfg *config.Config, appLogger logger.ZapLogger) []model.User {
	if cfg.Bootstrap.AdminPassword == "" {
		appLogger.Warn("No bootstrap admin password set, nobody can log in to the memory store")
		return nil
	}
	hash, err := auth.HashPassword(cfg.Bootstrap.AdminPassword)
	if err != nil {
		appLogger.Fatal("Could not hash bootstrap password", zap.Error(err))
	}
	now := time.Now()
	return []model.User{{
		BaseModel:    model.BaseModel{ID: "bootstrap-admin", CreatedAt: now, UpdatedAt: now},
		Email:        strings.ToLower(cfg.Bootstrap.AdminEmail),
		Name:         "Administrator",
		Role:         model.RoleSuperAdmin,
		PasswordHash: hash,
		Status:       "active",
	}}
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
