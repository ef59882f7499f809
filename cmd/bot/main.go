package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/anilist"
	handler "github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/http"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/searchlog"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/telegram"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/tracemoe"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/adapters/video"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/app"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/config"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/httpclient"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/logging"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/queue"

	_ "github.com/jpp0ca/tracemoe-telegram-bot/docs"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title			trace.moe Telegram Bot
// @version		1.0
// @description	Telegram webhook that identifies anime screenshots with trace.moe.

// @contact.name	trace.moe Telegram Bot
// @license.name	MIT

// @host		localhost:3000
// @BasePath	/
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.EnvFile {
		logger.Info("no .env file found, using environment variables")
	}
	if cfg.Revision == "" {
		cfg.Revision = gitRevision()
	}

	dbConfig := searchlog.Config{
		Driver:   cfg.DB.Driver,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		Name:     cfg.DB.Name,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Path:     cfg.DB.Path,
	}
	logger.Info("starting trace.moe bot",
		zap.String("webhook", cfg.TelegramWebhook),
		zap.Bool("trace_moe_api_key", cfg.TraceMoeKey != ""),
		zap.String("search_log", searchlog.Describe(dbConfig)),
		zap.String("revision", cfg.Revision),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	searchLog, err := searchlog.Open(startCtx, dbConfig)
	if err != nil {
		logger.Fatal("Failed to open search log", zap.Error(err))
	}
	defer searchLog.Close()

	// Create adapters
	httpClient := httpclient.New(httpclient.DefaultTimeout)
	tg := telegram.NewClient(cfg.TelegramAPI, cfg.TelegramToken, httpClient, logger.Named("telegram"))

	logger.Info("setting Telegram webhook")
	if err := tg.SetWebhook(startCtx, cfg.TelegramWebhook); err != nil {
		logger.Error("Failed to set webhook", zap.Error(err))
	}
	me, err := tg.GetMe(startCtx)
	if err != nil {
		logger.Error("Failed to resolve bot identity", zap.Error(err))
	}
	logger.Info("bot identity", zap.String("username", me.Username), zap.Int64("id", me.ID))

	policy := tracemoe.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.SearchAttempts
	backend := tracemoe.NewClient(cfg.TraceMoeAPI, cfg.TraceMoeKey, httpClient, policy, searchLog, logger.Named("tracemoe"))
	metadata := anilist.NewClient(cfg.AnilistAPI, httpClient, logger.Named("anilist"))

	// Create application services
	searchService := app.NewSearchService(backend, metadata, app.SearchConfig{
		Timeout:                cfg.SearchTimeout,
		StrictMetadata:         cfg.StrictMetadata,
		LowConfidenceThreshold: cfg.LowConfidenceThreshold,
		Token:                  cfg.TelegramToken,
	}, logger.Named("search"))

	botService := app.NewBotService(
		searchService,
		telegram.NewResolver(tg, logger.Named("resolver")),
		tg,
		video.NewProber(httpClient, logger.Named("video")),
		queue.NewKeyed(),
		searchLog,
		app.BotInfo{
			Name:       me.Username,
			Revision:   cfg.Revision,
			UsesAPIKey: cfg.TraceMoeKey != "",
			Homepage:   cfg.Homepage,
		},
		logger.Named("bot"),
	)

	// Setup HTTP server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(logger.Named("http")))
	h := handler.NewHandler(botService, me.Username, logger.Named("webhook"))
	h.RegisterRoutes(r)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := handler.NewServer(cfg.ListenAddr(), r, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

// gitRevision returns the checked out commit, or "" outside a git work tree.
func gitRevision() string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
