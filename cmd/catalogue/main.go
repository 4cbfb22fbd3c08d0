package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/catalogue/internal/adapter/fsm"
	oteladapter "github.com/neomorfeo/catalogue/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/catalogue/internal/adapter/river"
	"github.com/neomorfeo/catalogue/internal/adapter/sqlite"
	"github.com/neomorfeo/catalogue/internal/app"
	"github.com/neomorfeo/catalogue/internal/domain"

	handler "github.com/neomorfeo/catalogue/internal/adapter/http"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("catalogue stopped", "error", err)
		os.Exit(1)
	}
}

type config struct {
	Port         string
	DatabasePath string
	LogLevel     slog.Level
	MintAttempts int
}

func loadConfig() (config, error) {
	cfg := config{
		Port:         envOrDefault("PORT", "8080"),
		DatabasePath: envOrDefault("DATABASE_PATH", "catalogue.db"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	attempts, err := strconv.Atoi(envOrDefault("MINT_ATTEMPTS", strconv.Itoa(app.DefaultMintAttempts)))
	if err != nil || attempts < 1 {
		return config{}, fmt.Errorf("MINT_ATTEMPTS must be a positive integer, got %q", os.Getenv("MINT_ATTEMPTS"))
	}
	cfg.MintAttempts = attempts

	return cfg, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(sqlite.DSN(cfg.DatabasePath))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	queue, err := riveradapter.Setup(ctx, db, riveradapter.LogChange)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	ids, err := oteladapter.NewTracingIdentifierStore(store)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	// --- Application ---
	svc := app.NewCatalogue(app.Repositories{
		Nouns:           oteladapter.NewTracingRepository[domain.Noun](domain.ClassNoun, store.Nouns()),
		Modifiers:       oteladapter.NewTracingRepository[domain.Modifier](domain.ClassModifier, store.Modifiers()),
		NounModifiers:   oteladapter.NewTracingRepository[domain.NounModifier](domain.ClassNounModifier, store.NounModifiers()),
		Attributes:      oteladapter.NewTracingRepository[domain.Attribute](domain.ClassAttribute, store.Attributes()),
		AttributeValues: oteladapter.NewTracingRepository[domain.AttributeValue](domain.ClassAttributeValue, store.AttributeValues()),
		Manufacturers:   oteladapter.NewTracingRepository[domain.Manufacturer](domain.ClassManufacturer, store.Manufacturers()),
	},
		ids,
		store,
		oteladapter.NewTracingPublisher(riveradapter.NewPublisher(queue)),
		fsm.New(),
		app.WithMintAttempts(cfg.MintAttempts),
	)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(otelchi.Middleware("catalogue", otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("catalogue", version))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("catalogue listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
