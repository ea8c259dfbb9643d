package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"msgboard/internal/api"
	"msgboard/internal/app/service"
	"msgboard/internal/app/worker"
	"msgboard/internal/common/security"
	"msgboard/internal/domain/repository"
	"msgboard/internal/logging"
	"msgboard/internal/platform/config"
	"msgboard/internal/platform/database"
	"msgboard/internal/platform/queue"
	"msgboard/internal/platform/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	// The worker logs through baseLog so its own records never loop back into the ops log.
	baseLog := logging.New(out, cfg.LogLevel, nil)

	ctx := context.Background()

	// 2. Initialize Session Tokens
	tokens, err := security.NewTokenManager(cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		return fmt.Errorf("init tokens: %w", err)
	}

	// 3. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	baseLog.Info(ctx, "database connected")

	// 4. Initialize Redis
	rdb, err := queue.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	baseLog.Info(ctx, "redis connected", "addr", cfg.RedisAddr)

	// 5. Initialize Ops Log Worker
	logRepo := repository.NewRedisLogRepository(rdb, cfg.OpLogKey, cfg.OpLogCapacity)
	opLogWorker := worker.NewOpLogWorker(logRepo, baseLog.With("component", "oplog"), 0)
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	go opLogWorker.Start(workerCtx)

	appLog := logging.New(out, cfg.LogLevel, opLogWorker)

	// 6. Initialize Blob Storage
	blobs, uploads, uploadsPrefix, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	// 7. Initialize Repositories & Services
	userRepo := repository.NewPgUserRepository(db)
	messageRepo := repository.NewPgMessageRepository(db)
	imageRepo := repository.NewPgImageRepository(db)
	blocklist := repository.NewRedisTokenBlocklist(rdb, cfg.RevokedPrefix)

	authService := service.NewAuthService(userRepo, tokens, blocklist, cfg.StoreTimeout)
	messageService := service.NewMessageService(messageRepo, cfg.StoreTimeout)
	imageService := service.NewImageService(imageRepo, blobs, appLog, cfg.MaxUploadBytes, cfg.StoreTimeout)
	logService := service.NewLogService(logRepo, cfg.StoreTimeout)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, messageService, imageService, logService, api.Options{
		Log:            appLog,
		Production:     cfg.Production(),
		RequestTimeout: cfg.RequestTimeout,
		Uploads:        uploads,
		UploadsPrefix:  uploadsPrefix,
		PublicDir:      cfg.PublicDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info(ctx, "server starting", "port", cfg.APIPort, "env", cfg.AppEnv, "upload_backend", cfg.UploadBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.APIPort, err)
		}
	}

	appLog.Info(ctx, "shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLog.Error(ctx, "server shutdown failed", "err", err)
	}

	workerCancel()
	select {
	case <-opLogWorker.Done():
	case <-shutdownCtx.Done():
		baseLog.Warn(ctx, "ops log worker did not flush in time")
	}

	baseLog.Info(ctx, "server and worker stopped", "oplog_dropped", opLogWorker.Dropped())
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, http.Handler, string, error) {
	if cfg.UploadBackend == config.UploadBackendS3 {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, "", err
		}
		return s3Store, nil, "", nil
	}

	disk, err := storage.NewDiskStore(cfg.UploadDir, "uploads")
	if err != nil {
		return nil, nil, "", err
	}
	return disk, disk.Handler(), disk.Prefix(), nil
}
