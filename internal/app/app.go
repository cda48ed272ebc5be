package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/service"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/tokenstore"
	"github.com/templui/filesmanager/internal/worker"
)

const queueConnectTimeout = 10 * time.Second

// App holds every long-lived dependency. Both the API server and the
// worker are built from it.
type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Tokens         *tokenstore.RedisStore
	Queue          *queue.NATSQueue
	Storage        storage.Storage
	UserRepository repository.UserRepository
	FileRepository repository.FileRepository
	AuthService    *service.AuthService
	FileService    *service.FileService
	AppService     *service.AppService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Token store (lazy connection)
	tokens := tokenstore.NewRedis(tokenstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Job queue
	jobQueue := queue.NewNATSQueue(queue.NATSConfig{
		URL:        cfg.NATSURL,
		MaxDeliver: cfg.JobMaxDeliver,
		AckWait:    cfg.JobAckWait,
	})
	connectCtx, cancel := context.WithTimeout(ctx, queueConnectTimeout)
	defer cancel()
	if err := jobQueue.Connect(connectCtx); err != nil {
		// Uploads still work; image jobs fail to enqueue until NATS is back
		slog.Error("queue unavailable", "error", err, "url", cfg.NATSURL)
	}

	// Services
	authService := service.NewAuthService(userRepository, tokens, cfg.SessionExpiry)
	fileService := service.NewFileService(fileRepository, fileStorage, jobQueue, authService)
	appService := service.NewAppService(
		tokens,
		service.PingFunc(func(ctx context.Context) bool { return db.Alive(ctx, database) }),
		userRepository,
		fileRepository,
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Tokens:         tokens,
		Queue:          jobQueue,
		Storage:        fileStorage,
		UserRepository: userRepository,
		FileRepository: fileRepository,
		AuthService:    authService,
		FileService:    fileService,
		AppService:     appService,
	}, nil
}

// NewWorkerPool builds the thumbnail pool consuming from the app's queue.
func (a *App) NewWorkerPool() *worker.Pool {
	processor := worker.NewProcessor(a.FileRepository, a.Storage)
	return worker.NewPool(worker.PoolConfig{
		Concurrency: a.Cfg.WorkerConcurrency,
		MaxAttempts: a.Cfg.JobMaxDeliver,
	}, a.Queue, processor)
}

func (a *App) Close() error {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Tokens != nil {
		if err := a.Tokens.Close(); err != nil {
			slog.Warn("failed to close token store", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
