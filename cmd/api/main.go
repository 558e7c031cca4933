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

	"github.com/go-member-gate/internal/config"
	"github.com/go-member-gate/internal/infrastructure/dynamo"
	"github.com/go-member-gate/internal/infrastructure/gateway"
	jwtinfra "github.com/go-member-gate/internal/infrastructure/jwt"
	"github.com/go-member-gate/internal/infrastructure/memory"
	"github.com/go-member-gate/internal/infrastructure/smtp"
	"github.com/go-member-gate/internal/infrastructure/sns"
	"github.com/go-member-gate/internal/infrastructure/sqlite"
	transporthttp "github.com/go-member-gate/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var bootstrap bool
	flagSet := pflag.NewFlagSet("api", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.BoolVar(&bootstrap, "bootstrap", true, "create the DynamoDB tables if they don't exist")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		slog.Info("no env file found, reading from environment", "path", envFile)
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	if bootstrap {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	}

	var pending transporthttp.PendingStore
	switch cfg.PendingBackend {
	case config.PendingBackendDynamo:
		pending = dynamo.NewPendingRepo(dynamoClient, cfg.DynamoTables.PendingVerifications)
	case config.PendingBackendMemory:
		pending = memory.NewPendingStore()
	default:
		return fmt.Errorf("unknown PENDING_BACKEND %q", cfg.PendingBackend)
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	platform, err := gateway.NewClient(gateway.Options{
		BaseURL:           cfg.GatewayURL,
		Secret:            cfg.GatewaySecret,
		Timeout:           cfg.GatewayTimeout,
		RequestsPerSecond: float64(cfg.GatewayRPS),
	})
	if err != nil {
		return fmt.Errorf("gateway client: %w", err)
	}

	deps := &transporthttp.Deps{
		Settings:    dynamo.NewSettingsRepo(dynamoClient, cfg.DynamoTables.GuildSettings, cfg.SettingsScope),
		Pending:     pending,
		Platform:    platform,
		Recorder:    sqlite.NewRecorder(db),
		JWTProvider: jwtProvider,
	}

	// Operator alert channels are optional; with none configured alerts are only logged.
	if alerter, err := sns.NewAlerter(cfg); err == nil {
		deps.Alerters = append(deps.Alerters, alerter)
	} else {
		slog.Warn("SNS alerts disabled", "err", err)
	}
	if alerter, err := smtp.NewAlerter(cfg); err == nil {
		deps.Alerters = append(deps.Alerters, alerter)
	} else {
		slog.Warn("email alerts disabled", "err", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "pending_backend", cfg.PendingBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
