package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/marble-shop/go-backend/internal/cfg"
	v1Grpc "github.com/marble-shop/go-backend/internal/delivery/v1/grpc"
	v1Http "github.com/marble-shop/go-backend/internal/delivery/v1/http"
	"github.com/marble-shop/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/marble-shop/go-backend/internal/infrastructure/minio"
	s3Repo "github.com/marble-shop/go-backend/internal/repository/minio"
	"github.com/marble-shop/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/marble-shop/go-backend/internal/repository/pgdb/converter"
	"github.com/marble-shop/go-backend/internal/repository/redis"
	redisConv "github.com/marble-shop/go-backend/internal/repository/redis/converter"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/clients"
	"github.com/marble-shop/go-backend/pkg/closer"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/marble-shop/go-backend/pkg/postgres"
	"github.com/marble-shop/go-backend/pkg/tr"
)

// App собирает зависимости и управляет жизненным циклом серверов и фоновых задач.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	listener     *kafka.PgListener
	outboxWorker *kafka.OutboxWorker
	imagesInfra  *minioInfra.MinioInfrastructure

	// bgCtx живёт до начала остановки; его отмена прерывает фоновые задачи.
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   logger,
		closer:   closer.NewCloser(cfg.App.ShutdownTimeout / 2),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	if err := a.init(); err != nil {
		bgCancel()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			logger.Warnf("cleanup after failed init: %v", closeErr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Postgres
	db, err := postgres.Connect(initCtx, a.cfg.Db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddSimple("postgres", db.Close)

	if err := db.RunMigrations(a.logger); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	runner := tr.NewRunner(db.Pool)
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverterImpl{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverterImpl{})
	userRepo := pgdb.NewUserRepo(db.Pool, pgdbConv.UserConverterImpl{})
	adminRepo := pgdb.NewAdminRepo(db.Pool, pgdbConv.AdminConverterImpl{})
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.OrderConverterImpl{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverterImpl{})

	// MinIO
	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(initCtx, minioClient, a.cfg.Minio.BucketName); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	imageRepo := s3Repo.NewImageRepo(minioClient, a.cfg.Minio)
	a.imagesInfra = minioInfra.NewMinioInfrastructure(imageRepo, a.cfg.Minio, a.logger, a.bgCtx)

	// Redis
	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", redisClient.Close)
	if err := redisClient.Ping(initCtx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, &redisConv.ProductInfoConverterImpl{}, a.cfg.Redis, a.logger)

	// Kafka
	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		// топик может создаваться автоматически брокером, поэтому не фатально
		a.logger.Warnf("failed to ensure kafka topic: %v", err)
	}

	// Use cases
	productUC := usecase.NewProductUC(productRepo, categoryRepo, runner, a.imagesInfra, a.logger, cacheRepo)
	orderUC := usecase.NewOrderUC(
		usecase.NewCatalogReader(productRepo),
		usecase.NewOrderWriter(runner, productRepo, orderRepo, outboxRepo, a.logger),
		userRepo,
		productRepo,
		orderRepo,
		cacheRepo,
		a.logger,
	)
	userUC := usecase.NewUserUC(userRepo, a.logger)
	adminUC := usecase.NewAdminUC(adminRepo, a.logger)

	// Outbox
	a.listener = kafka.NewPgListener(db.Dsn, pgdb.OutboxChannel, a.logger)
	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.listener.Notifications(), a.cfg.Outbox)

	// Транспорт
	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(orderUC, productUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger, a.cfg.Http.SwaggerURL).Init(productUC, orderUC, userUC, adminUC)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	return nil
}

// Run запускает серверы и фоновые задачи и блокируется до сигнала остановки
// или фатальной ошибки сервера.
func (a *App) Run() error {
	a.listener.Start(a.bgCtx)
	a.outboxWorker.Start(a.bgCtx)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("grpc server", err)
		}
	}()
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- e.Wrap("http server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.shutdown()

	return appErr
}

// shutdown останавливает приём запросов, затем фоновые задачи, затем закрывает ресурсы.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(ctx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Errorf(err, "gRPC server shutdown error")
	}

	a.listener.Stop()
	a.outboxWorker.Stop()

	if err := a.imagesInfra.WaitForCleanup(ctx); err != nil {
		a.logger.Warnf("MinIO cleanup did not finish before shutdown, some objects may remain: %v", err)
	}
	a.bgCancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "resources shutdown error")
	}

	a.logger.Infof("Application shutdown complete")
}
