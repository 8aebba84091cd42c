package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelTestDriveHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/cancel_test_drive"
	completeTestDriveHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/complete_test_drive"
	confirmTestDriveHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/confirm_test_drive"
	createTestDriveHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/create_test_drive"
	getDisabledSlotsHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/get_disabled_slots"
	getTestDriveHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/get_test_drive"
	healthHandler "github.com/m04kA/SMC-TestDriveService/internal/api/handlers/health"
	"github.com/m04kA/SMC-TestDriveService/internal/api/middleware"
	"github.com/m04kA/SMC-TestDriveService/internal/api/realtime"
	"github.com/m04kA/SMC-TestDriveService/internal/config"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/events"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/groups"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/holds"
	testDriveRepo "github.com/m04kA/SMC-TestDriveService/internal/infra/storage/testdrive"
	catalogServiceClient "github.com/m04kA/SMC-TestDriveService/internal/integrations/catalogservice"
	slotsService "github.com/m04kA/SMC-TestDriveService/internal/service/slots"
	testDrivesService "github.com/m04kA/SMC-TestDriveService/internal/service/testdrives"
	bookSlotUC "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
	getDisabledSlotsUC "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
	"github.com/m04kA/SMC-TestDriveService/migrations"
	"github.com/m04kA/SMC-TestDriveService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TestDriveService/pkg/logger"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
	"github.com/m04kA/SMC-TestDriveService/pkg/txmanager"
)

type eventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("TESTDRIVE_CONFIG"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-TestDriveService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(context.Background(), db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// С nil metrics обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)
	testDriveRepository := testDriveRepo.NewRepository(wrappedDB)

	// Каталог необязателен: без него модель у дилера не проверяется
	var catalogClient testDrivesService.CatalogServiceClient
	if cfg.CatalogService.Enabled {
		catalogClient = catalogServiceClient.NewClient(
			cfg.CatalogService.URL,
			time.Duration(cfg.CatalogService.Timeout)*time.Second,
			log,
		)
		log.Info("CatalogService client initialized (url=%s timeout=%ds)",
			cfg.CatalogService.URL, cfg.CatalogService.Timeout)
	}

	var publisher eventPublisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, metricsCollector)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
		log.Info("RabbitMQ publisher initialized (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	defer publisher.Close()

	// Инициализируем сервисы
	testDriveSvc := testDrivesService.NewService(
		testDriveRepository,
		catalogClient,
		txMgr,
		publisher,
		testDrivesService.BookingRules{
			MinNotice:     time.Duration(cfg.Booking.MinNoticeMinutes) * time.Minute,
			AdvanceWindow: time.Duration(cfg.Booking.AdvanceBookingDays) * 24 * time.Hour,
		},
		nil,
		log,
	)

	holdStore := holds.NewStore(holds.WithShards(cfg.Holds.Shards))
	groupRegistry := groups.NewRegistry()
	hub := realtime.NewHub(groupRegistry, metricsCollector, log)
	slotSvc := slotsService.NewService(holdStore, groupRegistry, hub, cfg.Holds.TTL(), metricsCollector, log)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(testDriveSvc, slotSvc, metricsCollector, log)
	getDisabledSlotsUseCase := getDisabledSlotsUC.NewUseCase(testDriveSvc, slotSvc, log)

	// Инициализируем handlers
	realtimeServer := realtime.NewServer(hub, slotSvc, bookSlotUseCase, getDisabledSlotsUseCase, realtime.Options{
		SendBuffer:     cfg.Realtime.SendBuffer,
		PingInterval:   time.Duration(cfg.Realtime.PingIntervalSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.Realtime.WriteTimeoutSeconds) * time.Second,
		AllowedOrigins: cfg.Realtime.AllowedOrigins,
	}, metricsCollector, log)
	health := healthHandler.NewHandler(db, log)
	getDisabledSlots := getDisabledSlotsHandler.NewHandler(getDisabledSlotsUseCase, log)
	createTestDrive := createTestDriveHandler.NewHandler(bookSlotUseCase, log)
	getTestDrive := getTestDriveHandler.NewHandler(testDriveSvc, log)
	confirmTestDrive := confirmTestDriveHandler.NewHandler(testDriveSvc, log)
	completeTestDrive := completeTestDriveHandler.NewHandler(testDriveSvc, log)
	cancelTestDrive := cancelTestDriveHandler.NewHandler(testDriveSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// Real-time канал удержания и бронирования слотов
	r.HandleFunc("/ws/test-drives", realtimeServer.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Недоступные для записи моменты: забронированные и удерживаемые
	api.HandleFunc("/dealers/{dealerId}/products/{productId}/disabled-slots",
		getDisabledSlots.Handle).Methods(http.MethodGet)

	// Публичная запись на тест-драйв без удержания
	api.HandleFunc("/test-drives", createTestDrive.Handle).Methods(http.MethodPost)

	// ============================================================
	// STAFF ROUTES (требуют X-User-ID header)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth)

	staff.HandleFunc("/test-drives/{testDriveId}", getTestDrive.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/test-drives/{testDriveId}/confirm", confirmTestDrive.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/test-drives/{testDriveId}/complete", completeTestDrive.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/test-drives/{testDriveId}/cancel", cancelTestDrive.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
