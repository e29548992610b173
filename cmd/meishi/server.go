package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/meishi/internal/api"
	"github.com/kalambet/meishi/internal/config"
	"github.com/kalambet/meishi/internal/generation"
	"github.com/kalambet/meishi/internal/llm"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve published pages and the template catalog over MCP (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cmd.Context(), cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		versions, err := store.AppliedMigrations(cmd.Context())
		if err != nil {
			return err
		}
		printSuccess("Database is at migration %d (%d applied)", lastVersion(versions), len(versions))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func lastVersion(versions []int) int {
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1]
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func runServer(ctx context.Context) error {
	fmt.Fprintln(os.Stderr, versionString())

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	timeout, err := cfg.Generation.TimeoutDuration()
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()
	slog.Info("storage ready", "postgres", cfg.Storage.UsesPostgres())

	completer, err := llm.New(ctx, cfg.Generation)
	if err != nil {
		return fmt.Errorf("creating generation client: %w", err)
	}
	if o, ok := completer.(*llm.Ollama); ok && !o.HasModel(ctx) {
		printWarning("model %s is not available at %s; generation will fail until it is pulled", cfg.Generation.Model, cfg.Generation.BaseURL)
	}

	manager := profile.NewManager(store)
	handler := api.NewRouter(api.Deps{
		Profiles:      manager,
		Generator:     generation.NewOrchestrator(completer, store, timeout, cfg.Generation.Temperature),
		PublicBaseURL: cfg.Server.PublicBaseURL,
		JWTSecret:     cfg.Auth.JWTSecret,
		WebhookSecret: cfg.Auth.WebhookSecret,
		CORSOrigins:   cfg.Server.Origins(),
	})
	if cfg.Auth.WebhookSecret == "" {
		printWarning("auth.webhook_secret is not set; identity events will be rejected")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation requests hold the connection for the whole upstream call.
		WriteTimeout: timeout + 15*time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", addr, "provider", cfg.Generation.Provider, "model", cfg.Generation.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMCP(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr only.
	setupLogging(cfg.Log.Level)

	store, err := storage.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Pages:         profile.NewManager(store),
		PublicBaseURL: cfg.Server.PublicBaseURL,
	}, version)
	slog.Info("MCP server started (stdio transport)")

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	baseURL := strings.TrimRight(cfg.Server.PublicBaseURL, "/")
	client := &http.Client{Timeout: 2 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	switch {
	case err != nil:
		printStatus("Server", "not reachable at %s", baseURL)
	case resp.StatusCode == http.StatusOK:
		resp.Body.Close()
		printStatus("Server", "running at %s", baseURL)
	default:
		resp.Body.Close()
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
	}

	printStatus("Provider", "%s (%s)", cfg.Generation.Provider, cfg.Generation.Model)
	if cfg.Generation.Provider == config.ProviderOllama {
		if llm.NewOllama(cfg.Generation.BaseURL, cfg.Generation.Model).HasModel(ctx) {
			printStatus("Model", "available")
		} else {
			printStatus("Model", "missing at %s", cfg.Generation.BaseURL)
		}
	}
	storageKind := "sqlite"
	if cfg.Storage.UsesPostgres() {
		storageKind = "postgres"
	}
	printStatus("Storage", "%s", storageKind)
	if err := cfg.Validate(); err != nil {
		printWarning("serve would fail: %v", err)
	}
	return nil
}
