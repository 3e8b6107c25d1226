package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/authentication"
	"github.com/sleeplog/internal/avatars"
	"github.com/sleeplog/internal/calendars"
	"github.com/sleeplog/internal/credentials"
	httpx "github.com/sleeplog/internal/http"
	"github.com/sleeplog/internal/http/static"
	"github.com/sleeplog/internal/http/templates"
	"github.com/sleeplog/internal/jobs"
	"github.com/sleeplog/internal/keys"
	"github.com/sleeplog/internal/ledger"
	"github.com/sleeplog/internal/migrations"
	"github.com/sleeplog/internal/profiles"
	"github.com/sleeplog/internal/statistics"
	"github.com/sleeplog/internal/timezone"
	"github.com/sleeplog/internal/tokens"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		slog.Error("parse config", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if err := run(logger, cfg); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
	logger.Info("application stopped")
}

func run(logger *slog.Logger, cfg *config) error {
	encryptionKey, err := keys.ParseKey([]byte(cfg.EncryptionKey))
	if err != nil {
		return err
	}

	location, err := timezone.Load(cfg.Timezone)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := badger.Open(badger.DefaultOptions(cfg.DatabasePath).WithLogger(nil))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(ctx, logger, db); err != nil {
		return err
	}

	var renderer templates.Renderer
	var staticHandler http.Handler
	if cfg.Watch {
		renderer = templates.NewFilesystemTemplates("./internal/http/templates")
		staticHandler = static.NewFilesystemHandler("./internal/http/static/files")
	} else {
		renderer = templates.NewEmbedTemplates()
		staticHandler = static.NewEmbedHandler()
	}

	credentialsStore := credentials.NewStore(db)
	tokensStore := tokens.NewStore(db)
	authenticationService := authentication.NewService(tokensStore, credentialsStore)
	ledgerService := ledger.NewService(ledger.NewStore(db))
	statisticsService := statistics.NewService(ledgerService)
	profilesService := profiles.NewService(profiles.NewStore(db))
	resizer := avatars.NewResizer(cfg.UploadsDir, profilesService)
	scheduler := jobs.NewScheduler(logger, jobs.NewStore(db), resizer)
	scheduler.OnJobSucceeded(func(ctx context.Context, job *jobs.Job) {
		if err := resizer.RemoveOriginal(job); err != nil {
			logger.WarnContext(ctx, "remove original avatar", "job_id", job.ID, "error", err)
		}
	})
	avatarsService := avatars.NewService(cfg.UploadsDir, profilesService, scheduler)
	calendarsService := calendars.NewService(calendars.NewStore(db), authenticationService, ledgerService, location)
	if err := scheduler.Init(ctx); err != nil {
		return err
	}

	if cfg.DemoAccount != "" {
		login, password, _ := strings.Cut(cfg.DemoAccount, ":")
		creds, err := authenticationService.EnsureAccount(ctx, login, password)
		if err != nil {
			return err
		}
		if _, err := profilesService.EnsureExists(ctx, creds.ID); err != nil {
			return err
		}
		logger.Info("demo account ready", "login", creds.Login)
	}

	htmlHandler := httpx.Handler(
		logger,
		renderer,
		staticHandler,
		static.NewUploadsHandler(avatars.URLPrefix, cfg.UploadsDir),
		encryptionKey,
		location,
		authenticationService,
		ledgerService,
		statisticsService,
		profilesService,
		avatarsService,
		scheduler,
		calendarsService,
	)

	httpServer := http.Server{
		Handler:           htmlHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Wait for shut down in a separate goroutine.
	errCh := make(chan error)
	go func() {
		shutdownCh := make(chan os.Signal, 1)
		signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdownCh

		logger.Info("shutting down", "signal", sig)
		cancel()

		shutdownTimeout := 15 * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errCh <- httpServer.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	logger.Info("listening", "address", ln.Addr())

	if err := httpServer.Serve(ln); err != http.ErrServerClosed {
		return err
	}

	return <-errCh
}
