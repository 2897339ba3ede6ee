package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/astroview/astro-edge/pkg/cache"
	"github.com/astroview/astro-edge/pkg/logging"
	"github.com/astroview/astro-edge/pkg/nasa"
	"github.com/astroview/astro-edge/pkg/proxy"
	"github.com/astroview/astro-edge/pkg/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	apiKey := getEnv("NASA_API_KEY", "DEMO_KEY")
	userAgent := getEnv("USER_AGENT", "astro-edge/0.1.0")
	relayBase := getEnv("RELAY_BASE", "http://localhost:"+port)
	staticDir := os.Getenv("STATIC_DIR")

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

	tracker := ratelimit.NewTracker(redisClient, logger)

	cfg := nasa.DefaultConfig(apiKey, userAgent, relayBase)
	cfg.Tracker = tracker
	source, err := nasa.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create upstream adapter")
	}

	server, err := proxy.New(proxy.Config{
		Source:    source,
		Cache:     cache.NewRedisStore(redisClient),
		UserAgent: userAgent,
		StaticDir: staticDir,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create proxy server")
	}

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("user_agent", userAgent).Msg("Starting edge proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("Redis close failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
