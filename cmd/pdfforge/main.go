// Entry point for the pdfforge document tool server — MCP over stdio or
// streamable HTTP, with an SQLite operation journal.
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

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/pdfforge/dbopen"
	"github.com/hazyhaar/pdfforge/forge"
	"github.com/hazyhaar/pdfforge/opslog"
)

func main() {
	cfg := DefaultConfig()
	if path := env("CONFIG", ""); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if t := env("MCP_TRANSPORT", ""); t != "" {
		cfg.Transport = t
	}
	if l := env("LISTEN", ""); l != "" {
		cfg.Listen = l
	}
	if j := env("JOURNAL_DB", ""); j != "" {
		cfg.JournalDB = j
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging. Stdio transport owns stdout, so logs go to stderr.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Operation journal.
	var journal *opslog.Store
	if cfg.JournalDB != "" {
		db, err := dbopen.Open(cfg.JournalDB, dbopen.WithMkdirAll())
		if err != nil {
			slog.Error("journal db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		journal = opslog.NewStore(db)
		if err := journal.Init(); err != nil {
			slog.Error("journal init", "error", err)
			os.Exit(1)
		}
		defer journal.Close()
	}

	svc := forge.New(forge.Config{
		MaxSourceSize: cfg.MaxSourceBytes(),
		JournalKeep:   cfg.JournalKeep,
		Logger:        logger,
	}, journal)

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "pdfforge",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(mcpSrv)

	switch cfg.Transport {
	case "http":
		runHTTP(ctx, cfg, mcpSrv)
	default:
		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
	}
}

func runHTTP(ctx context.Context, cfg *Config, mcpSrv *mcp.Server) {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpSrv
	}, nil)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/mcp", handler)
	r.Handle("/mcp/*", handler)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("MCP HTTP starting", "addr", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("MCP HTTP", "error", err)
		os.Exit(1)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
