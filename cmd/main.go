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

	cancelAppointmentHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/create_appointment"
	createExceptionHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/create_exception"
	deleteExceptionHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/delete_exception"
	getAgendaAppointmentsHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/get_agenda_appointments"
	getAppointmentHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/get_availability"
	rescheduleAppointmentHandler "github.com/duvan51/agenda-booking-engine/internal/api/handlers/reschedule_appointment"
	"github.com/duvan51/agenda-booking-engine/internal/api/middleware"
	"github.com/duvan51/agenda-booking-engine/internal/config"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	appointmentRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/appointment"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	exceptionRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/exception"
	scheduleRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/schedule"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	appointmentsService "github.com/duvan51/agenda-booking-engine/internal/service/appointments"
	exceptionsService "github.com/duvan51/agenda-booking-engine/internal/service/exceptions"
	createAppointmentUC "github.com/duvan51/agenda-booking-engine/internal/usecase/create_appointment"
	getAvailabilityUC "github.com/duvan51/agenda-booking-engine/internal/usecase/get_availability"
	rescheduleAppointmentUC "github.com/duvan51/agenda-booking-engine/internal/usecase/reschedule_appointment"
	"github.com/duvan51/agenda-booking-engine/pkg/dbmetrics"
	"github.com/duvan51/agenda-booking-engine/pkg/logger"
	"github.com/duvan51/agenda-booking-engine/pkg/metrics"
	"github.com/duvan51/agenda-booking-engine/pkg/simpletxmanager"
	"github.com/duvan51/agenda-booking-engine/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting agenda-booking-engine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Сервисные дефолты движка: агенда без собственных настроек
	// наследует значения из config.toml
	engineDefaults := agendaRepo.EngineDefaults{
		CapacityPolicy:           domain.CapacityPolicy(cfg.Engine.CapacityPolicy),
		BucketGranularityMinutes: cfg.Engine.BucketGranularityMinutes,
		DefaultClosedDay:         cfg.Engine.DefaultClosedDay,
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		agendaRepository      *agendaRepo.Repository
		catalogRepository     *catalogRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		exceptionRepository   *exceptionRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		agendaRepository = agendaRepo.NewRepository(wrappedDB, engineDefaults)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		exceptionRepository = exceptionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		agendaRepository = agendaRepo.NewRepository(db, engineDefaults)
		catalogRepository = catalogRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		exceptionRepository = exceptionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем уведомитель изменений расписания.
	// Redis-публикация опциональна: без неё события доставляются
	// только внутрипроцессным подписчикам.
	var redisPublisher *notifier.RedisPublisher
	var changePublisher notifier.Publisher
	if cfg.Redis.Enabled {
		redisPublisher = notifier.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisPublisher.Ping(pingCtx); err != nil {
			cancelPing()
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancelPing()
		changePublisher = redisPublisher
		log.Info("Redis change publisher connected (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)
	}

	changeNotifier := notifier.New(log, changePublisher)
	defer changeNotifier.Close()
	if redisPublisher != nil {
		defer redisPublisher.Close()
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		agendaRepository,
		changeNotifier,
		log,
	)
	exceptionsSvc := exceptionsService.NewService(
		exceptionRepository,
		agendaRepository,
		catalogRepository,
		changeNotifier,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		agendaRepository,
		catalogRepository,
		scheduleRepository,
		txMgr,
		changeNotifier,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		agendaRepository,
		catalogRepository,
		scheduleRepository,
		txMgr,
		changeNotifier,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		appointmentRepository,
		agendaRepository,
		catalogRepository,
		scheduleRepository,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAgendaAppointments := getAgendaAppointmentsHandler.NewHandler(appointmentsSvc, log)
	createException := createExceptionHandler.NewHandler(exceptionsSvc, log)
	deleteException := deleteExceptionHandler.NewHandler(exceptionsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность агенды на дату
	api.HandleFunc("/agendas/{agendaId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Подтверждение записи
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// Перенос записи на другой слот
	protected.HandleFunc("/appointments/{appointmentId}/slot", rescheduleAppointment.Handle).Methods(http.MethodPatch)

	// --- Управление агендой (для операторов) ---
	// Список записей агенды
	protected.HandleFunc("/agendas/{agendaId}/appointments", getAgendaAppointments.Handle).Methods(http.MethodGet)

	// Создание исключения расписания
	protected.HandleFunc("/agendas/{agendaId}/exceptions", createException.Handle).Methods(http.MethodPost)

	// Удаление исключения расписания
	protected.HandleFunc("/exceptions/{exceptionId}", deleteException.Handle).Methods(http.MethodDelete)

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
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
