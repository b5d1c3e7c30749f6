package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/internal/infrastructure/config"
	"timetable-sync-service/internal/infrastructure/oauth"
	"timetable-sync-service/internal/infrastructure/persistence"
	gcalendar "timetable-sync-service/internal/interface/calendar"
	"timetable-sync-service/internal/interface/openai"
	pdfreader "timetable-sync-service/internal/interface/pdf"
	mongoRepo "timetable-sync-service/internal/interface/repository"
	"timetable-sync-service/internal/usecase"
	"timetable-sync-service/pkg/logger"
	"timetable-sync-service/pkg/metrics"
	"timetable-sync-service/pkg/report"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Timetable Sync Service", "version", cfg.AppVersion)

	timetables, err := config.LoadTimetables(cfg.TimetablesFile)
	if err != nil {
		log.Fatal("Failed to load timetables", "error", err)
	}
	log.Info("Loaded timetables", "count", len(timetables))

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up repositories
	versionRepo := mongoRepo.NewMongoVersionRepository(db)
	mappingRepo := mongoRepo.NewMongoMappingRepository(db)

	// Run summaries go to PostgreSQL when configured
	var syncRunRepo repository.SyncRunRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		if err := gormDB.AutoMigrate(&mongoRepo.SyncRunRow{}); err != nil {
			log.Fatal("Failed to migrate sync run table", "error", err)
		}
		syncRunRepo = mongoRepo.NewGormSyncRunRepository(gormDB)
	}

	m := metrics.NewMetrics("timetable_sync")

	// Set up Google OAuth and the Calendar client
	googleOAuth := oauth.NewGoogleOAuth(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRefreshToken,
		log,
	)
	tokenSource := googleOAuth.GetTokenSource(ctx)

	calendarService, err := gcalendar.NewGoogleCalendarService(ctx, tokenSource, cfg.CalendarTimeout, log)
	if err != nil {
		log.Fatal("Failed to create Calendar service", "error", err)
	}

	// Optional subject cleanup collaborator
	var cleaner repository.SubjectCleaner
	if cfg.OpenAIAPIKey != "" {
		cleaner = openai.NewSubjectCleanerClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	}

	versionStore := usecase.NewVersionStore(versionRepo, log)
	synchronizer := usecase.NewCalendarSynchronizer(calendarService, mappingRepo, log)

	processor := usecase.NewSyncProcessor(versionStore, synchronizer, mappingRepo, syncRunRepo, cleaner, m, log)

	// Schedule periodic sync runs
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SyncSchedule, func() {
		runAll(ctx, processor, timetables, cfg, log)
	})
	if err != nil {
		log.Fatal("Invalid sync schedule", "schedule", cfg.SyncSchedule, "error", err)
	}
	scheduler.Start()

	// First pass right away
	go runAll(ctx, processor, timetables, cfg, log)

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	cancel()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Timetable Sync Service stopped")
}

// runAll reconciles every configured timetable once. Timetables are
// independent and processed sequentially.
func runAll(ctx context.Context, processor *usecase.SyncProcessor, timetables []config.Timetable, cfg *config.Config, log logger.Logger) {
	for _, t := range timetables {
		if ctx.Err() != nil {
			return
		}
		if err := runOne(ctx, processor, t, cfg, log); err != nil {
			log.Error("Sync run failed", "timetable", t.Key, "error", err)
		}
	}
}

func runOne(ctx context.Context, processor *usecase.SyncProcessor, t config.Timetable, cfg *config.Config, log logger.Logger) error {
	location, err := t.Location()
	if err != nil {
		return err
	}

	versionTS, err := pdfreader.VersionFromPDF(t.PDFPath, location)
	if err != nil {
		log.Warn("No version stamp in PDF, syncing anyway", "timetable", t.Key, "error", err)
	}

	table, err := pdfreader.TableFromPDF(t.PDFPath)
	if err != nil {
		return err
	}

	_, result, err := processor.ProcessTimetable(ctx, usecase.SyncJob{
		TimetableKey: t.Key,
		Keyword:      t.Keyword,
		CalendarID:   t.CalendarID,
		Location:     location,
		DryRun:       t.DryRun,
		Table:        table,
		VersionTS:    versionTS,
	})
	if err != nil {
		return err
	}

	if cfg.ReportDir != "" && len(result.Outcomes) > 0 {
		path, err := report.WriteOutcomes(cfg.ReportDir, t.Key, result, time.Now())
		if err != nil {
			log.Error("Failed to write outcome report", "timetable", t.Key, "error", err)
		} else {
			log.Info("Outcome report written", "timetable", t.Key, "path", path)
		}
	}
	return nil
}
