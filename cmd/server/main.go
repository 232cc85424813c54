package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/config"
	"github.com/mamadbah2/splitpay/internal/ledger"
	"github.com/mamadbah2/splitpay/internal/repository/memory"
	"github.com/mamadbah2/splitpay/internal/repository/mongodb"
	"github.com/mamadbah2/splitpay/internal/repository/sheets"
	"github.com/mamadbah2/splitpay/internal/scheduler"
	"github.com/mamadbah2/splitpay/internal/server/handlers"
	"github.com/mamadbah2/splitpay/internal/server/router"
	reportingsvc "github.com/mamadbah2/splitpay/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/splitpay/internal/service/whatsapp"
	"github.com/mamadbah2/splitpay/internal/transfer"
	whatsappclient "github.com/mamadbah2/splitpay/pkg/clients/whatsapp"
	"github.com/mamadbah2/splitpay/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, closeStore := openStore(cfg, baseLogger)
	defer closeStore()

	salesLedger := ledger.New(store, baseLogger.Named("ledger"))
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 15*time.Second)
	if err := salesLedger.Load(loadCtx); err != nil {
		cancelLoad()
		baseLogger.Fatal("failed to load sales ledger", zap.Error(err))
	}
	cancelLoad()

	var sheetGateway transfer.SheetGateway
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetGateway = sheetsRepo
		baseLogger.Info("google sheets sync enabled", zap.String("range", cfg.Sheets.Range))
	} else {
		baseLogger.Warn("google sheets credentials missing, sheet sync disabled")
	}

	reportingSvc := reportingsvc.NewService(salesLedger, baseLogger.Named("svc.reporting"))
	transferSvc := transfer.NewService(salesLedger, sheetGateway, cfg.Sheets.Range, baseLogger.Named("svc.transfer"))

	var messagingSvc whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(whatsClient, baseLogger.Named("svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp access token missing, digests will only be logged")
		messagingSvc = whatsappsvc.NewLogOnlyService(baseLogger.Named("svc.whatsapp"))
	}

	salesHandler := handlers.NewSalesHandler(salesLedger, reportingSvc, transferSvc, baseLogger.Named("handlers.sales"))
	engine, err := router.New(salesHandler, baseLogger.Named("router"))
	if err != nil {
		baseLogger.Fatal("failed to init router", zap.Error(err))
	}

	location, err := cfg.Digest.Location()
	if err != nil {
		baseLogger.Fatal("invalid digest timezone", zap.String("timezone", cfg.Digest.Timezone), zap.Error(err))
	}
	sched := scheduler.NewScheduler(cfg.Digest.CronSchedule, location, cfg.WhatsApp.DigestRecipient, reportingSvc, messagingSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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

// openStore returns the configured ledger store and a function releasing it.
func openStore(cfg *config.Config, baseLogger *zap.Logger) (ledger.Store, func()) {
	if cfg.Store.Backend == config.StoreMemory {
		baseLogger.Warn("using in-memory store, records are lost on restart")
		return memory.NewStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.Store.DatasetKey, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}

	return mongoRepo, func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}
}
