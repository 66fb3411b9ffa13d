// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-gptchat/internal/auth"
	"github.com/iyunix/go-gptchat/internal/config"
	"github.com/iyunix/go-gptchat/internal/handlers"
	"github.com/iyunix/go-gptchat/internal/identity"
	"github.com/iyunix/go-gptchat/internal/ratelimit"
	"github.com/iyunix/go-gptchat/internal/repository"
	"github.com/iyunix/go-gptchat/internal/services"
	"github.com/iyunix/go-gptchat/internal/services/ai"
	"github.com/iyunix/go-gptchat/internal/services/chat"
	"github.com/iyunix/go-gptchat/internal/services/customgpt"
	"github.com/iyunix/go-gptchat/internal/services/user_services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: config: %v", err)
	}

	logger, err := services.NewZapLogger("gptchat", cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: logger: %v", err)
	}
	defer logger.Sync()

	// --- Storage ---
	db, err := repository.Open(repository.DatabaseConfig{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		LogQueries: cfg.LogLevel == "debug",
	})
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	repos := repository.NewRepositories(db, logger)

	// --- Services ---
	ctx := context.Background()
	provider, err := ai.NewProvider(ctx, &ai.Config{
		Provider:     cfg.AIProvider,
		APIKey:       cfg.LLMAPIKey,
		BaseURL:      cfg.LLMBaseURL,
		Model:        cfg.LLMModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		Timeout:      cfg.LLMTimeout,
		Temperature:  cfg.LLMTemperature,
		MaxTokens:    cfg.LLMMaxTokens,
	})
	if err != nil {
		logger.Error("failed to initialize AI provider", "error", err)
		os.Exit(1)
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	chatCfg := chat.DefaultConfig()
	chatCfg.DefaultSystemPrompt = cfg.DefaultSystemPrompt
	chatCfg.MaxHistoryMessages = cfg.MaxHistoryMessages
	chatCfg.CompletionTimeout = cfg.LLMTimeout
	chatService, err := chat.NewChatService(chatCfg, repos.Chats, repos.Messages, provider, repos.CustomGPTs, repos.Users, logger)
	if err != nil {
		logger.Error("failed to initialize chat service", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewManager(cfg.JWTSecretKey, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token manager, set JWT_SECRET_KEY", "error", err)
		os.Exit(1)
	}
	userService := user_services.NewUserService(repos.Users, tokens, logger)
	personaService := customgpt.NewService(repos.CustomGPTs, repos.Users, logger)

	chatLimiter, authLimiter, closeLimiters := newLimiters(ctx, cfg, logger)
	defer closeLimiters()

	// --- Router ---
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(userService, logger),
		Chat:           handlers.NewChatHandler(chatService, logger),
		CustomGPT:      handlers.NewCustomGPTHandler(personaService, logger),
		Log:            handlers.NewLogHandler(logger.With("source", "client")),
		Resolver:       identity.NewResolver(tokens, logger),
		Logger:         logger,
		ChatLimiter:    chatLimiter,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment, "ai_provider", cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}

// newLimiters uses redis when REDIS_ADDR is set and in-process counters
// otherwise. A redis that cannot be reached falls back to memory.
func newLimiters(ctx context.Context, cfg *config.Config, logger services.Logger) (ratelimit.Limiter, ratelimit.Limiter, func()) {
	chatCfg := ratelimit.DefaultChatConfig()
	chatCfg.WindowSize = cfg.RateLimitWindow
	chatCfg.MaxAttempts = cfg.RateLimitChatMax
	authCfg := ratelimit.DefaultAuthConfig()
	authCfg.WindowSize = cfg.RateLimitWindow
	authCfg.MaxAttempts = cfg.RateLimitAuthMax

	if cfg.RedisAddr != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			logger.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
			return ratelimit.NewRedisRateLimiter(rdb, chatCfg, "ratelimit"),
				ratelimit.NewRedisRateLimiter(rdb, authCfg, "ratelimit"),
				func() { _ = rdb.Close() }
		}
		logger.Warn("redis unavailable, using in-memory rate limiting", "error", err)
	}

	chatLimiter := ratelimit.NewMemoryRateLimiter(chatCfg)
	authLimiter := ratelimit.NewMemoryRateLimiter(authCfg)
	return chatLimiter, authLimiter, func() {
		_ = chatLimiter.Close()
		_ = authLimiter.Close()
	}
}
