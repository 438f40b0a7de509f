package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	aipadapter "github.com/ericfisherdev/aipclient/internal/adapter/driven/aip"
	sqliteadapter "github.com/ericfisherdev/aipclient/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/aipclient/internal/adapter/driving/http"
	"github.com/ericfisherdev/aipclient/internal/application"
	"github.com/ericfisherdev/aipclient/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already carry the settings.
	_ = godotenv.Load()

	// 1. Load configuration (fail fast on missing credentials).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"base_url", cfg.BaseURL,
		"http_timeout", cfg.HTTPTimeout,
		"lexer_cache_size", cfg.LexerCacheSize,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the invoice history database.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 4. Create the AIP clients. Each owns its own access token.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	lexicalClient, err := aipadapter.NewLexicalClientWithHTTPClient(httpClient, cfg.BaseURL, cfg.Client)
	if err != nil {
		return err
	}
	invoiceClient, err := aipadapter.NewInvoiceClientWithHTTPClient(httpClient, cfg.BaseURL, cfg.Client)
	if err != nil {
		return err
	}

	// 5. Wire services.
	lexerSvc, err := application.NewLexerService(lexicalClient, cfg.LexerCacheSize)
	if err != nil {
		return err
	}
	invoiceSvc := application.NewInvoiceService(invoiceClient, sqliteadapter.NewInvoiceRepo(db))

	// 6. Create HTTP handler.
	apiHandler := httphandler.NewHandler(lexerSvc, invoiceSvc, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A PDF fetch, a token fetch and the recognition call may run back to back.
		WriteTimeout: 3*cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("aipgateway started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
