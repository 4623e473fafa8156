package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"persona-chat/internal/config"
	"persona-chat/internal/database"
	"persona-chat/internal/handlers"
	"persona-chat/internal/instruction"
	"persona-chat/internal/logger"
	"persona-chat/internal/router"
	"persona-chat/internal/services"
	"persona-chat/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()
	log.Info("🚀 Starting persona-chat server...", zap.String("env", cfg.Env))

	// ──── Step 2: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal("✗ Gemini client initialization failed", zap.Error(err))
	}
	log.Info("✓ Gemini client initialized", zap.String("model", cfg.GeminiModel))

	// ──── Step 3: Instruction Store + Chat Relay ────
	store := instruction.NewStore(cfg.DefaultInstruction)

	relay, err := services.NewChatRelay(geminiService, store, services.RelayConfig{
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		History:     services.NewHistoryPolicy(cfg.HistoryWindow),
	}, log)
	if err != nil {
		log.Fatal("✗ Chat relay initialization failed", zap.Error(err))
	}
	log.Info("✓ Chat relay ready", zap.Int("history_window", cfg.HistoryWindow))

	// ──── Step 4: Optional Redis + WebSocket Hub ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatal("✗ Redis connection failed", zap.Error(err))
		}
		defer redisClients.Close()
		log.Info("✓ Redis connected")
	}

	var wsHub *websocket.Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	if redisClients != nil {
		wsHub = websocket.NewHub(store, redisClients.Publisher, log)
		go func() {
			if err := wsHub.Run(hubCtx, redisClients.PubSub); err != nil {
				log.Error("instruction subscription stopped", zap.Error(err))
			}
		}()
	} else {
		wsHub = websocket.NewHub(store, nil, log)
	}
	log.Info("✓ WebSocket hub started", zap.String("origin", wsHub.Origin()))

	// ──── Step 5: Start HTTP Server ────
	r := router.New(
		handlers.NewInstructionHandler(store, wsHub, log),
		handlers.NewChatHandler(relay, log),
		wsHub,
		cfg.StaticDir,
		cfg.CORSOrigins,
		log,
	)

	// No WriteTimeout: a chat request lasts as long as the provider call.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		stopHub()
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info("✓ Server ready",
		zap.String("port", cfg.Port),
		zap.String("static", cfg.StaticDir),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
