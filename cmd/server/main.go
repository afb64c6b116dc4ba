// Command server runs the CRM sync service: the cron scheduler plus the HTTP
// API for ad-hoc queries, manual job triggers, and run history.
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

	_ "github.com/mattn/go-sqlite3"

	"crmsync/internal/adapter"
	"crmsync/internal/api"
	"crmsync/internal/auth"
	"crmsync/internal/config"
	"crmsync/internal/crm"
	"crmsync/internal/db"
	"crmsync/internal/db/repository"
	"crmsync/internal/domain"
	syncsvc "crmsync/internal/service/sync"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	doc, err := config.LoadJobsFile(cfg.JobsFile)
	if err != nil {
		return err
	}
	logger.Info("job document loaded", "file", cfg.JobsFile, "jobs", len(doc.Jobs))

	pool, err := db.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.RunMigrations(pool); err != nil {
		return err
	}
	runs := repository.NewSyncRunRepo(pool)

	httpClient := &http.Client{Timeout: cfg.CRM.Timeout}

	targets := map[domain.TargetKind]auth.TargetCredentials{}
	if conn, ok := doc.Targets[domain.TargetDashboardServer]; ok {
		targets[domain.TargetDashboardServer] = auth.TargetCredentials{BaseURL: conn.BaseURL, Token: cfg.DashboardToken}
	}
	if conn, ok := doc.Targets[domain.TargetBIWorkspace]; ok {
		targets[domain.TargetBIWorkspace] = auth.TargetCredentials{BaseURL: conn.BaseURL, Token: cfg.WorkspaceToken}
	}
	provider := auth.NewStaticProvider(httpClient, cfg.CRM.BaseURL, cfg.CRM.Token, targets)

	executor := crm.NewExecutor(logger)

	exportDir := doc.Targets[domain.TargetFlatFile].Directory
	registry := syncsvc.NewRegistry(
		adapter.NewDashboardAdapter(logger),
		adapter.NewWorkspaceAdapter(logger),
		adapter.NewFlatFileAdapter(exportDir, logger),
	)

	runner := syncsvc.NewRunner(provider, executor, registry, logger)
	jobRunner := syncsvc.NewJobRunner(runner, logger)
	svc := syncsvc.NewService(doc, jobRunner, runs, provider, executor, logger)

	scheduler := syncsvc.NewScheduler(svc, doc, logger)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(svc, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		JWTSecret:          []byte(cfg.JWTSecret),
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
