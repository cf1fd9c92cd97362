package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulletins/internal/api"
	"bulletins/internal/config"
	"bulletins/internal/handler"
	"bulletins/internal/render"
	"bulletins/internal/repository"
	"bulletins/internal/service"
	"bulletins/pkg/schoolapi"
	"bulletins/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const purgeInterval = time.Hour

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logrus.Info("Config initialized...")

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Инициализируем SQLite базу данных
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite ограничения
	})
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance:", err)
	}

	// Включаем поддержку внешних ключей (требуется для SQLite)
	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.Infof("Warning: Failed to enable foreign keys: %v", err)
	}

	operatorRepo, err := repository.NewGormOperatorRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create operator repository")
	}

	archiveRepo, err := repository.NewGormArchiveRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create archive repository")
	}

	snapshotRepo, err := repository.NewGormSnapshotRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create snapshot repository")
	}

	operatorService := service.NewOperatorService(operatorRepo)

	archiveService, err := service.NewArchiveService(archiveRepo, cfg.ArchiveDir, cfg.ArchiveTTL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create archive service")
	}

	schoolClient := schoolapi.NewClient(cfg.SchoolAPIURL, cfg.SchoolAPIToken, cfg.SchoolAPITimeout, logger)

	fetchService := service.NewFetchService(
		schoolClient,
		snapshotRepo,
		cfg.FetchConcurrency,
		cfg.AcademicYearStart,
		cfg.AcademicYearEnd,
		logger,
	)

	reportService := service.NewReportService(
		render.NewRenderer(cfg.SchoolName),
		archiveService,
		snapshotRepo,
		cfg.RenderConcurrency,
		logger,
	)

	// Инициализируем администратора из конфига
	if err := operatorService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logger.Infof("Warning: Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logger.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Бот необязателен: без токена работает только HTTP API
	var client *telegram.Client
	if cfg.BotEnabled() {
		client, err = telegram.NewClient(cfg.TelegramToken, cfg.LogLevel == logrus.DebugLevel)
		if err != nil {
			logger.Fatal("Failed to create Telegram client:", err)
		}
		logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

		reportService.SetNotifier(handler.NewArchiveNotifier(client, operatorService, cfg.PublicURL))

		botHandler := handler.NewHandler(client, operatorService, archiveService, cfg.PublicURL, logger)
		go botHandler.HandleUpdates(ctx, client.Updates())
	}

	go purgeLoop(ctx, archiveService, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(fetchService, reportService, archiveService, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	logger.Info("Service started. Press Ctrl+C to stop.")
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Infof("Error shutting down HTTP server: %v", err)
	}
	if client != nil {
		client.Stop()
	}

	// Закрываем соединение с БД
	if err := sqlDB.Close(); err != nil {
		logger.Infof("Error closing database: %v", err)
	}

	logger.Info("Service stopped gracefully")
}

// purgeLoop периодически удаляет истекшие архивы
func purgeLoop(ctx context.Context, archives *service.ArchiveService, logger *logrus.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		if _, err := archives.PurgeExpired(time.Now()); err != nil {
			logger.WithError(err).Warn("Failed to purge expired archives")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
