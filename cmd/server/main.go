package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medparse/internal/config"
	"medparse/internal/handler"
	"medparse/internal/observability"
	"medparse/internal/parser"
	"medparse/internal/parser/groq"
	"medparse/internal/port"
	"medparse/internal/ratelimit"
	"medparse/internal/router"
	"medparse/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Admission counter: Redis when reachable, in-process otherwise.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	var counter port.CounterStore
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, using in-memory rate limit counter", zap.Error(err))
		counter = ratelimit.NewMemoryCounter()
		_ = rdb.Close()
		rdb = nil
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		counter = ratelimit.NewRedisCounter(rdb, "medparse:ratelimit")
	}

	singleLimiter := ratelimit.NewLimiter(counter, "single", cfg.RateLimit.Single.Limit, cfg.RateLimit.Single.Window)
	batchLimiter := ratelimit.NewLimiter(counter, "batch", cfg.RateLimit.Batch.Limit, cfg.RateLimit.Batch.Window)

	// Extraction client, optionally degrading to the regex parser.
	var medParser port.MedicineParser = groq.NewParser(&cfg.Parser)
	if cfg.Parser.RegexFallback {
		medParser = parser.NewFallbackParser(
			[]port.MedicineParser{medParser, parser.NewRegexParser()},
			[]string{"groq", "regex"},
			logger,
		)
	}

	// Services
	authSvc, err := service.NewAuthService(cfg.API, cfg.JWT)
	if err != nil {
		return err
	}
	parseSvc := service.NewParseService(medParser, cfg.Batch, logger)

	// Handlers
	authH := handler.NewAuthHandler(authSvc, logger)
	parseH := handler.NewParseHandler(parseSvc, logger)
	healthH := handler.NewHealthHandler(rdb)

	r := router.Setup(authSvc, singleLimiter, batchLimiter, authH, parseH, healthH, cfg.CORS.AllowedOrigins, logger)

	logger.Info("server starting", zap.String("addr", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
