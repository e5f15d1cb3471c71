package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dispatcher/internal/config"
	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"github.com/KirkDiggler/dispatcher/internal/metrics"
	"github.com/KirkDiggler/dispatcher/internal/repositories/deliveries"
	"github.com/KirkDiggler/dispatcher/internal/ticker"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Debug("No .env file found")
	}

	collector := metrics.New()

	// Delivery stats go to Redis when it is reachable, otherwise stay in memory
	repo, redisClient := newDeliveryRepository(cfg.Redis, logger)
	recorder := deliveries.NewRecorder(&deliveries.RecorderConfig{
		Repository: repo,
		Logger:     logger,
	})

	dispatcher.InitDefault(
		dispatcher.WithLogger(logger),
		dispatcher.WithObserver(collector),
		dispatcher.WithObserver(recorder),
	)
	bus := dispatcher.Default()

	if _, err := bus.Subscribe(cfg.Ticker.Event, dispatcher.Func(func(args ...any) {
		logger.Debug("tick", zap.Any("n", args[0]), zap.Any("due", args[1]))
	}), "logger"); err != nil {
		logger.Fatal("Failed to subscribe tick logger", zap.Error(err))
	}

	tickerOpts := []ticker.Option{ticker.WithLogger(logger)}
	if cfg.Ticker.AllowDrift {
		tickerOpts = append(tickerOpts, ticker.AllowDrift())
	}
	tk, err := ticker.New(bus, cfg.Ticker.Event, cfg.Ticker.Interval, tickerOpts...)
	if err != nil {
		logger.Fatal("Failed to create ticker", zap.Error(err))
	}
	if err := tk.Start(); err != nil {
		logger.Fatal("Failed to start ticker", zap.Error(err))
	}

	var server *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		server = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	logger.Info("Dispatcher is running. Press CTRL-C to exit.",
		zap.String("event", cfg.Ticker.Event),
		zap.Duration("interval", cfg.Ticker.Interval))

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tk.Destroy()
	bus.Wait()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("Error stopping metrics server", zap.Error(err))
		}
	}

	if err := recorder.Close(ctx); err != nil {
		logger.Warn("Error flushing delivery stats", zap.Error(err))
	}

	if stats, err := repo.List(ctx); err != nil {
		logger.Warn("Failed to list delivery stats", zap.Error(err))
	} else {
		for _, stat := range stats {
			logger.Info("Delivery stats",
				zap.String("event", stat.Event),
				zap.Int64("publishes", stat.Publishes),
				zap.Int64("deliveries", stat.Deliveries),
				zap.Int64("failures", stat.Failures))
		}
	}

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Error closing Redis connection", zap.Error(err))
		} else {
			logger.Info("Closed Redis connection")
		}
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

func newDeliveryRepository(cfg config.RedisConfig, logger *zap.Logger) (deliveries.Repository, *redis.Client) {
	if cfg.URL == "" {
		logger.Info("No REDIS_URL found, keeping delivery stats in memory")
		return deliveries.NewInMemory(&deliveries.RealTimeProvider{}), nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warn("Failed to parse Redis URL, falling back to in-memory stats", zap.Error(err))
		return deliveries.NewInMemory(&deliveries.RealTimeProvider{}), nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, falling back to in-memory stats", zap.Error(err))
		_ = client.Close()
		return deliveries.NewInMemory(&deliveries.RealTimeProvider{}), nil
	}

	logger.Info("Using Redis for delivery stats", zap.String("addr", opts.Addr))
	return deliveries.NewRedis(client), client
}
