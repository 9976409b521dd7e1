// Package server initializes and runs the application server. It opens the
// database, runs migrations, connects the object store, and starts the HTTP
// server with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/config"
	"github.com/mkorolis/studyvault/internal/server/httpapi"
	"github.com/mkorolis/studyvault/internal/server/objectstore"
	"github.com/mkorolis/studyvault/internal/server/repositories/repomanager"
	"github.com/mkorolis/studyvault/internal/server/services"
)

type App struct {
	config *config.Config
	zlog   zerolog.Logger
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger := logging.NewZerologLogger(zlog)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := objectstore.NewS3Store(context.Background(), objectstore.S3Config{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		UsePathStyle: cfg.S3UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reasm, err := services.NewReassembler(cfg.MergeStrategy, store, logger)
	if err != nil {
		return nil, err
	}

	uploadCfg := services.UploadSettings{
		ChunkSize:      cfg.ChunkSize,
		Threshold:      cfg.ChunkThreshold,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		PresignExpiry:  cfg.PresignExpiry,
	}

	fileService := services.NewFileService(db, rm, store, reasm, uploadCfg, logger)
	projectService := services.NewProjectService(db, rm, fileService, logger)
	userService := services.NewUserService(db, rm, cfg.SecretKey, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	httpServer := httpapi.New(cfg.ListenAddr, zlog, userService, projectService, fileService)

	return &App{
		config: cfg,
		zlog:   zlog,
		logger: logger,
		db:     db,
		http:   httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.ListenAddr, "merge_strategy", app.config.MergeStrategy)

	app.initSignalHandler(cancelFunc)

	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "app stopped")
}
