package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/repository/sqlite"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	advisorysvc "github.com/mamadbah2/herdbook/internal/service/advisory"
	dashboardsvc "github.com/mamadbah2/herdbook/internal/service/dashboard"
	eventsvc "github.com/mamadbah2/herdbook/internal/service/events"
	importsvc "github.com/mamadbah2/herdbook/internal/service/imports"
	rostersvc "github.com/mamadbah2/herdbook/internal/service/roster"
	sessionsvc "github.com/mamadbah2/herdbook/internal/service/session"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	keys, closeKeys := openKeyStore(ctx, cfg, baseLogger)
	defer closeKeys()

	herdClient := herd.NewClient(cfg.HerdAPI)

	navLogger := baseLogger.Named("navigation")
	nav := sessionsvc.NavigatorFunc(func(path string) {
		navLogger.Debug("navigation requested", zap.String("path", path))
	})

	sessionMgr := sessionsvc.NewManager(ctx, herdClient, keys, nav, baseLogger.Named("svc.session"))
	dashboardStore := dashboardsvc.NewStore(herdClient, sessionMgr, baseLogger.Named("svc.dashboard"))
	rosterStore := rostersvc.NewStore(herdClient, baseLogger.Named("svc.roster"))
	eventSvc := eventsvc.NewService(herdClient, baseLogger.Named("svc.events"))
	advisor := advisorysvc.NewService(herdClient, sessionMgr, baseLogger.Named("svc.advisory"))
	sessionMgr.OnLogout(dashboardStore, rosterStore, eventSvc, advisor)

	importSvc := importsvc.NewService(herdClient, openWorkbookSource(ctx, cfg, baseLogger), loadFallbackMapping(cfg, baseLogger), baseLogger.Named("svc.imports"))

	handler := handlers.NewHandler(sessionMgr, dashboardStore, rosterStore, eventSvc, importSvc, advisor, baseLogger.Named("handlers"))
	engine := router.New(handler, sessionMgr, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(cfg.Scheduler, sessionMgr, rosterStore, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("herd_api", cfg.HerdAPI.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openKeyStore(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (sessionsvc.KeyStore, func()) {
	switch cfg.Keystore.Driver {
	case config.KeystoreMongoDB:
		store, err := mongodb.NewKeyStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb keystore", zap.Error(err))
		}
		return store, func() {
			if err := store.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
	default:
		store, err := sqlite.NewKeyStore(ctx, cfg.Keystore.SQLitePath)
		if err != nil {
			baseLogger.Fatal("failed to init sqlite keystore", zap.Error(err))
		}
		return store, func() {
			if err := store.Close(); err != nil {
				baseLogger.Error("failed to close sqlite keystore", zap.Error(err))
			}
		}
	}
}

func openWorkbookSource(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) importsvc.WorkbookSource {
	if cfg.Sheets.CredentialsPath == "" {
		baseLogger.Info("google sheets credentials missing, spreadsheet imports disabled")
		return nil
	}
	repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}
	return repo
}

func loadFallbackMapping(cfg *config.Config, baseLogger *zap.Logger) *importsvc.MappingConfig {
	if cfg.Import.MappingPath == "" {
		return nil
	}
	mapping, err := importsvc.LoadMappingConfig(cfg.Import.MappingPath)
	if err != nil {
		baseLogger.Fatal("failed to load import mapping", zap.Error(err))
	}
	return &mapping
}
