package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/access"
	accesspostgres "github.com/rfsolutions/access-management/internal/access/postgres"
	"github.com/rfsolutions/access-management/internal/auth"
	authpostgres "github.com/rfsolutions/access-management/internal/auth/postgres"
	"github.com/rfsolutions/access-management/internal/core/events"
	"github.com/rfsolutions/access-management/internal/department"
	departmentpostgres "github.com/rfsolutions/access-management/internal/department/postgres"
	"github.com/rfsolutions/access-management/internal/observability/metrics"
	"github.com/rfsolutions/access-management/internal/sensor"
	sensorpostgres "github.com/rfsolutions/access-management/internal/sensor/postgres"
	"github.com/rfsolutions/access-management/internal/transport/rest"
	"github.com/rfsolutions/access-management/internal/user"
	userpostgres "github.com/rfsolutions/access-management/internal/user/postgres"
	"github.com/rfsolutions/access-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   chi.Router
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(events.EventTypeAccessDecided, func(ctx context.Context, ev events.Event) error {
		if decided, ok := ev.(*events.AccessDecidedEvent); ok {
			metrics.ObserveAccessDecision(decided.Outcome, decided.AccessType)
		}
		return nil
	})
	eventBus.Subscribe(events.EventTypeSensorRetired, func(ctx context.Context, ev events.Event) error {
		if retired, ok := ev.(*events.SensorRetiredEvent); ok {
			lg.Warn("sensor retired", "sensor_code", retired.SensorCode, "status", retired.Status)
		}
		return nil
	})

	policy := auth.NewPolicy()

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authRepo := authpostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, config.Security.RecoveryCodeWindow, lg)
	authHandler := auth.NewHandler(authService)

	userRepo := userpostgres.NewRepository(gormDB)
	userService := user.NewService(userRepo, policy, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService)

	departmentRepo := departmentpostgres.NewRepository(gormDB)
	departmentService := department.NewService(departmentRepo, policy, lg)
	departmentHandler := department.NewHandler(departmentService)

	sensorRepo := sensorpostgres.NewRepository(gormDB)
	sensorService := sensor.NewService(sensorRepo, policy, eventBus, lg)
	sensorHandler := sensor.NewHandler(sensorService)

	accessRepo := accesspostgres.NewRepository(gormDB)
	accessService := access.NewService(accessRepo, sensorRepo, userRepo, eventBus, lg)
	accessHandler := access.NewHandler(accessService)

	router := rest.NewRouter(rest.RouterDependencies{
		DB:                db.DB,
		SqlxDB:            db,
		Policy:            policy,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		DepartmentHandler: departmentHandler,
		SensorHandler:     sensorHandler,
		AccessHandler:     accessHandler,
		OpenAPIPath:       "api/openapi.yml",
		CORSOrigins:       config.Server.AllowedOrigins,
		Logger:            lg,
	})

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		GormDB:   gormDB,
		Router:   router,
		EventBus: eventBus,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection so both
// query paths share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}
