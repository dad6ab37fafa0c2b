package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/taskboard/taskboard-api/internal/api"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
	"github.com/taskboard/taskboard-api/internal/config"
	"github.com/taskboard/taskboard-api/internal/platform/postgres"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/migrations"
)

// application holds the shared dependencies of the server. Handlers and
// middleware are built from these in setupRouter.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	userService service.UserService
	taskService service.TaskService

	authMiddleware *middleware.AuthMiddleware
}

// newApplication opens the database, applies pending migrations and wires the
// stores, services and middleware.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		db.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	bcryptVerifier := auth.NewBcryptVerifier()

	userStore := postgres.NewPostgresUserStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)

	userService, err := service.NewUserService(userStore, bcryptVerifier, bcryptVerifier, db, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	taskService, err := service.NewTaskService(taskStore, userStore, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         log,
		db:             db,
		jwtService:     jwtService,
		userService:    userService,
		taskService:    taskService,
		authMiddleware: middleware.NewAuthMiddleware(jwtService, userStore),
	}, nil
}

// Close releases the application's resources.
func (app *application) Close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}

// authHandler builds the handler for registration, login and profile routes.
func (app *application) authHandler() *api.AuthHandler {
	return api.NewAuthHandler(app.userService, app.jwtService, app.logger)
}

func openDatabase(cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")

	return db, nil
}

func runMigrations(db *sql.DB, log *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info("database migrations applied", slog.Int64("version", version))

	return nil
}
