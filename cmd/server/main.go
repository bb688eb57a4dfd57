package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fairtix/config"
	"fairtix/internal/database"
	"fairtix/internal/handler"
	"fairtix/internal/queue"
	"fairtix/internal/repository"
	"fairtix/internal/service"
	"fairtix/internal/worker"
	"fairtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	addr := pflag.String("addr", "", "HTTP listen address (overrides server.addr)")
	pflag.Parse()

	// .env 不存在時忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.WithComponent("server").Error("Server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.WithComponent("server")

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("initialize redis: %w", err)
		}
		defer rdb.Close()
	}

	orderEvents, closeOrderEvents, err := newOrderEventQueue(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer closeOrderEvents()

	var store queue.WaitingRoomStore
	if cfg.Admission.Backend == config.BackendRedis {
		store = queue.NewRedisWaitingRoomStore(rdb)
	} else {
		store = queue.NewMemoryWaitingRoomStore()
	}

	eventRepository := repository.NewEventRepository(pool)
	seatRepository := repository.NewSeatRepository(pool)
	orderRepository := repository.NewOrderRepository(pool)
	userRepository := repository.NewUserRepository(pool)

	admissionService := service.NewAdmissionService(store, cfg.Admission.LeaseTTL)
	eventService := service.NewEventService(eventRepository, seatRepository)
	orderService := service.NewOrderService(orderRepository, userRepository)
	userService := service.NewUserService(userRepository)
	reservationService := service.NewReservationService(pool, seatRepository, orderRepository, orderEvents, service.ReservationOptions{
		PricePerSeat: cfg.Reservation.PricePerSeat,
		TxTimeout:    cfg.Reservation.TxTimeout,
		HoldTTL:      cfg.Reservation.HoldTTL,
	})

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(
		handler.NewHealthHandler(healthChecks(pool, rdb)...),
		handler.NewAuthHandler(userService),
		handler.NewEventHandler(eventService),
		handler.NewQueueHandler(admissionService),
		handler.NewReservationHandler(reservationService, admissionService),
		handler.NewOrderHandler(orderService),
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.NewAdmissionWorker(eventService, admissionService,
			worker.ConstantRate(cfg.Admission.Rate), cfg.Admission.Interval).Run(gctx)
	})
	g.Go(func() error {
		return worker.NewReservationSweeper(reservationService, cfg.Reservation.SweepInterval).Run(gctx)
	})
	g.Go(func() error {
		return worker.NewOrderEventWorker(orderEvents, admissionService).Run(gctx)
	})
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newOrderEventQueue 依設定選擇訂單事件後端，回傳的 close 函式一定可呼叫
func newOrderEventQueue(ctx context.Context, cfg *config.Config, rdb *redis.Client) (queue.OrderEventQueue, func(), error) {
	switch cfg.OrderEvents.Backend {
	case config.BackendRedis:
		hostname, _ := os.Hostname()
		consumerID := fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
		q, err := queue.NewRedisStreamOrderEventQueue(ctx, rdb, consumerID, queue.RedisStreamConfig{
			MaxRetryCount: cfg.OrderEvents.MaxAttempts,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initialize order event stream: %w", err)
		}
		return q, func() {}, nil
	case config.BackendAMQP:
		q := queue.NewAMQPOrderEventQueue(cfg.OrderEvents.AMQPURL, cfg.OrderEvents.Queue)
		return q, func() {
			if err := q.Close(); err != nil {
				logger.WithComponent("server").Warn("Failed to close AMQP connection", zap.Error(err))
			}
		}, nil
	default:
		q := queue.NewMemoryOrderEventQueue(cfg.OrderEvents.BufferSize,
			queue.WithRetry(cfg.OrderEvents.MaxAttempts, 0, 0))
		return q, func() {}, nil
	}
}

func healthChecks(pool *pgxpool.Pool, rdb *redis.Client) []handler.HealthCheck {
	checks := []handler.HealthCheck{
		{Name: "postgres", Ping: pool.Ping},
	}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
