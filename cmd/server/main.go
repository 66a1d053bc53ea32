package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"issuepreview/internal/config"
	"issuepreview/internal/content"
	"issuepreview/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("issue template preview server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	handler, err := newHandler(cfg, "templates")
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving issue templates",
			"addr", cfg.BindAddr,
			"dir", cfg.TemplateDir,
			"markdown", cfg.MarkdownEngine,
			"refresh", cfg.RefreshSeconds,
		)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadConfig 解析命令行参数，非空的参数覆盖对应的环境变量后再读取配置。
func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	overrides := map[string]*string{
		"BIND_ADDR":       fs.String("bind", "", "listen address, e.g. :9090"),
		"TEMPLATE_DIR":    fs.String("template-dir", "", "directory holding issue template YAML files"),
		"MARKDOWN_ENGINE": fs.String("markdown", "", "markdown engine: lite or goldmark"),
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	for key, val := range overrides {
		if *val == "" {
			continue
		}
		if err := os.Setenv(key, *val); err != nil {
			return config.Config{}, fmt.Errorf("set %s: %w", key, err)
		}
	}
	return config.Load()
}

func newHandler(cfg config.Config, viewDir string) (http.Handler, error) {
	store, err := content.NewStore(cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("open template dir: %w", err)
	}
	views, err := filepath.Abs(viewDir)
	if err != nil {
		return nil, fmt.Errorf("resolve view dir: %w", err)
	}
	return server.New(cfg, store, views)
}
