// Command polychat runs the streaming chat gateway HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/leofalp/polychat/internal/config"
	"github.com/leofalp/polychat/internal/gateway"
	"github.com/leofalp/polychat/internal/server"
	"github.com/leofalp/polychat/internal/store"
	"github.com/leofalp/polychat/internal/store/memstore"
	"github.com/leofalp/polychat/internal/store/sqlitestore"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	configPath := flag.String("config", "polychat.toml", "path to the TOML configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, cleanup, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer cleanup()

	defaults := gateway.Defaults{
		gateway.ProviderOpenAI:    {APIKey: cfg.Providers.OpenAI.APIKey, BaseURL: cfg.Providers.OpenAI.BaseURL},
		gateway.ProviderAnthropic: {APIKey: cfg.Providers.Anthropic.APIKey, BaseURL: cfg.Providers.Anthropic.BaseURL},
		gateway.ProviderGemini:    {APIKey: cfg.Providers.Gemini.APIKey, BaseURL: cfg.Providers.Gemini.BaseURL},
	}
	gw := gateway.New(st, gateway.DefaultFactory(defaults), logger)

	var limiter *rate.Limiter
	if cfg.Server.ChatRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.ChatRPS), cfg.Server.ChatBurst)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.New(st, gw, logger, limiter).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "storage", cfg.Storage.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the configured store backend and a cleanup function.
func openStore(cfg config.StorageConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := sqlitestore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return memstore.New(), func() {}, nil
	}
}
