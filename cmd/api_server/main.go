package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/virtnum/gateway/internal/identity/app"
	identitypg "github.com/virtnum/gateway/internal/identity/repository/postgres"
	ledgerapp "github.com/virtnum/gateway/internal/ledger/app"
	ledgerpg "github.com/virtnum/gateway/internal/ledger/repository/postgres"
	messagesapp "github.com/virtnum/gateway/internal/messages/app"
	messagespg "github.com/virtnum/gateway/internal/messages/repository/postgres"
	"github.com/virtnum/gateway/internal/numbers/adapters/provider"
	numbersapp "github.com/virtnum/gateway/internal/numbers/app"
	numberspg "github.com/virtnum/gateway/internal/numbers/repository/postgres"
	"github.com/virtnum/gateway/internal/platform/config"
	"github.com/virtnum/gateway/internal/platform/database"
	"github.com/virtnum/gateway/internal/platform/logger"
	"github.com/virtnum/gateway/internal/platform/messagebroker"
	transport "github.com/virtnum/gateway/internal/transport/http"
)

func main() {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Virtual number gateway starting...", "port", cfg.HTTPPort, "log_level", cfg.LogLevel)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	dbPool, err := database.NewDBPool(rootCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL database")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, "virtnum-gateway", appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	appLogger.Info("Successfully connected to NATS")

	userRepo := identitypg.NewPgUserRepository(dbPool)
	sessionRepo := identitypg.NewPgSessionRepository(dbPool)
	transactionRepo := ledgerpg.NewPgTransactionRepository(dbPool)
	numberRepo := numberspg.NewPgNumberRepository(dbPool)
	messageRepo := messagespg.NewPgMessageRepository(dbPool)

	authService := identityapp.NewAuthService(userRepo, sessionRepo, identityapp.AuthConfig{
		SessionSecret:      cfg.SessionSecret,
		SessionExpiryHours: cfg.SessionExpiryHours,
	}, appLogger)

	ledgerService := ledgerapp.NewLedgerService(userRepo, transactionRepo, dbPool, appLogger)

	providerClient := buildProviderClient(cfg, appLogger)
	appLogger.Info("Provider client initialized", "provider", providerClient.Name())

	lifecycleService := numbersapp.NewLifecycleService(
		numberRepo,
		ledgerService,
		providerClient,
		dbPool,
		dbPool,
		time.Duration(cfg.NumberLeaseMinutes)*time.Minute,
		appLogger,
	)

	messageService := messagesapp.NewMessageService(messageRepo, numberRepo, appLogger)

	sweeper := numbersapp.NewExpirySweeper(
		lifecycleService,
		time.Duration(cfg.ExpirySweepIntervalSec)*time.Second,
		appLogger,
	)
	go sweeper.Run(rootCtx)

	inboundConsumer := messagesapp.NewInboundConsumer(natsClient, messageService, appLogger)
	if err := inboundConsumer.Start(rootCtx, cfg.InboundSMSSubject, cfg.InboundSMSQueueGroup); err != nil {
		appLogger.Error("Failed to start inbound SMS consumer", "error", err)
		os.Exit(1)
	}

	router := transport.NewRouter(transport.RouterDeps{
		Auth:     authService,
		Sessions: authService,
		Wallet:   ledgerService,
		Numbers:  lifecycleService,
		Messages: messageService,
		Logger:   appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening on port %d", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			rootCancel()
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case receivedSignal := <-quitChan:
		appLogger.Info("Shutdown signal received", "signal", receivedSignal.String())
	case <-rootCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	rootCancel()
	appLogger.Info("Gateway shut down successfully.")
}

func buildProviderClient(cfg *config.Config, appLogger *slog.Logger) provider.Client {
	switch cfg.ProviderKind {
	case "http":
		httpClient := &http.Client{Timeout: time.Duration(cfg.ProviderTimeoutSec) * time.Second}
		return provider.NewHTTPProvider(appLogger, cfg.ProviderBaseURL, cfg.ProviderAPIKey, httpClient)
	default:
		return provider.NewMockProvider(appLogger, cfg.ProviderMockFail, 0, 0)
	}
}
