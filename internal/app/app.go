package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/aidar/team-scheduler/internal/config"
	"github.com/aidar/team-scheduler/internal/handler"
	"github.com/aidar/team-scheduler/internal/middleware"
	"github.com/aidar/team-scheduler/internal/repository"
	"github.com/aidar/team-scheduler/internal/repository/filestore"
	"github.com/aidar/team-scheduler/internal/repository/memory"
	"github.com/aidar/team-scheduler/internal/repository/postgres"
	"github.com/aidar/team-scheduler/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config  *config.Config
	db      *pgxpool.Pool
	store   *repository.Store
	router  http.Handler
	server  *http.Server
	logger  *slog.Logger
	limiter *middleware.RateLimiter
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)
	handler.SetDebug(cfg.Debug)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Открываем хранилище выбранного типа
	if err := a.openStore(ctx); err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer()

	a.logger.Info("Application initialized successfully", "storage", a.config.Storage.Driver)
	return nil
}

// openStore создает хранилище согласно STORAGE_DRIVER
func (a *App) openStore(ctx context.Context) error {
	switch a.config.Storage.Driver {
	case config.StorageMemory:
		a.store = memory.NewStore()
	case config.StorageFile:
		store, err := filestore.NewStore(a.config.Storage.DataDir)
		if err != nil {
			return err
		}
		a.store = store
		a.logger.Info("Using file storage", "dir", a.config.Storage.DataDir)
	case config.StoragePostgres:
		if err := a.connectDB(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		n, err := postgres.Migrate(a.db, migrate.Up)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		a.logger.Info("Applied migrations", "count", n)
		a.store = postgres.NewStore(a.db)
	default:
		return fmt.Errorf("unknown storage driver %q", a.config.Storage.Driver)
	}
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	// Инициализируем слой сервисов (бизнес-логика)
	memberService := service.NewMemberService(a.store)
	teamService := service.NewTeamService(a.store)
	meetingService := service.NewMeetingService(a.store)
	scheduleService := service.NewScheduleService(a.store)
	authService := service.NewAuthService(
		memberService,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
		a.config.Auth.BcryptCost,
	)

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(authService)
	memberHandler := handler.NewMemberHandler(memberService, scheduleService)
	teamHandler := handler.NewTeamHandler(teamService, scheduleService)
	meetingHandler := handler.NewMeetingHandler(meetingService, scheduleService)
	timeHandler := handler.NewTimeHandler()

	// Инициализируем middleware для JWT авторизации и ограничения частоты входа
	authMiddleware := middleware.AuthMiddleware(authService)
	a.limiter = middleware.NewRateLimiter(a.config.RateLimit.RPS, a.config.RateLimit.Burst)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	// Аутентификация: регистрация и вход ограничены по частоте
	r.Route("/auth", func(r chi.Router) {
		r.With(a.limiter.Handler).Post("/register", authHandler.Register)
		r.With(a.limiter.Handler).Post("/login", authHandler.Login)
		r.Post("/verify", authHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", authHandler.Logout)
			r.Get("/profile", authHandler.Profile)
			r.Put("/profile", authHandler.UpdateProfile)
		})
	})

	// Конвертация времени
	r.Route("/time", func(r chi.Router) {
		r.Get("/local", timeHandler.Local)
		r.Get("/utc", timeHandler.UTC)
	})

	// Участники: чтение публичное, изменения требуют JWT токен
	r.Route("/members", func(r chi.Router) {
		r.Get("/", memberHandler.List)
		r.Get("/{id}", memberHandler.Get)
		r.Get("/{id}/availability", memberHandler.GetAvailability)
		r.Get("/{id}/teams", memberHandler.Teams)
		r.Get("/{id}/local-time", memberHandler.LocalTime)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", memberHandler.Create)
			r.Put("/{id}", memberHandler.Update)
			r.Delete("/{id}", memberHandler.Delete)
			r.Put("/{id}/availability", memberHandler.SetAvailability)
			r.Post("/{id}/availability/import", memberHandler.ImportAvailability)
		})
	})

	// Команды
	r.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{id}", teamHandler.Get)
		r.Get("/{id}/members", teamHandler.Members)
		r.Get("/{id}/meetings", meetingHandler.ListByTeam)
		r.Get("/{id}/local-times", teamHandler.LocalTimes)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", teamHandler.Create)
			r.Put("/{id}", teamHandler.Update)
			r.Delete("/{id}", teamHandler.Delete)
			r.Post("/{id}/members", teamHandler.AddMember)
			r.Post("/{id}/members/{memberId}", teamHandler.AddMember)
			r.Delete("/{id}/members/{memberId}", teamHandler.RemoveMember)
			r.Post("/{id}/owner", teamHandler.TransferOwnership)
			r.Post("/{id}/meetings", meetingHandler.Create)
		})
	})

	// Встречи и голосование
	r.Route("/meetings", func(r chi.Router) {
		r.Get("/", meetingHandler.List)
		r.Get("/{id}", meetingHandler.Get)
		r.Get("/{id}/votes", meetingHandler.Votes)
		r.Get("/{id}/results", meetingHandler.Results)
		r.Get("/{id}/participants", meetingHandler.Participants)
		r.Get("/{id}/availability", meetingHandler.Availability)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", meetingHandler.Create)
			r.Put("/{id}", meetingHandler.Update)
			r.Delete("/{id}", meetingHandler.Delete)
			r.Post("/{id}/votes", meetingHandler.SubmitVote)
			r.Post("/{id}/finalize", meetingHandler.Finalize)
		})
	})

	a.router = r

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Handler возвращает настроенный роутер, доступен после Initialize
func (a *App) Handler() http.Handler {
	return a.router
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
