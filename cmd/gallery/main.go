package main

import (
	"context"
	"errors"
	"fmt"
	"gallery/internal/config"
	"gallery/internal/disk/local"
	"gallery/internal/disk/s3"
	"gallery/internal/events"
	"gallery/internal/gallery"
	"gallery/internal/http-server/router"
	"gallery/internal/kafka/producer"
	"gallery/internal/lib/logger/handlers/slogpretty"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/storage/memory"
	"gallery/internal/storage/postgres"
	"gallery/internal/upload"
	"github.com/juju/ratelimit"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type imageStore interface {
	gallery.Store
	Close() error
}

// @title                       Gallery API
// @version                     1.0
// @description                 Authenticated image gallery.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting gallery", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	storage, err := setupStorage(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	disk, files, err := setupDisk(context.Background(), &cfg.Disk, log)
	if err != nil {
		log.Error("failed to init disk", sl.Err(err))
		os.Exit(1)
	}

	normalizer := upload.New(log, disk, cfg.Upload.MaxBytes(), cfg.Upload.AllowedExtensions)

	var kafkaProducer *producer.Producer
	var notifier gallery.Notifier

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = producer.NewProducer(&cfg.Kafka, log)
		if err != nil {
			log.Error("failed to create kafka producer", sl.Err(err))
			os.Exit(1)
		}
		notifier = events.NewPublisher(log, kafkaProducer)
	} else {
		log.Info("kafka brokers are not configured, change events are disabled")
	}

	svc := gallery.New(log, storage, normalizer, notifier)

	var limiter *ratelimit.Bucket
	if cfg.RateLimit.Rate > 0 {
		limiter = ratelimit.NewBucketWithRate(cfg.RateLimit.Rate, cfg.RateLimit.Capacity)
	}

	opts := router.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		MaxUploadBytes: cfg.Upload.MaxBytes(),
		Limiter:        limiter,
	}
	if files != nil {
		opts.Files = files.Handler()
		opts.FilesPrefix = files.PublicPrefix()
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(log, svc, opts),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", sl.Err(err))
	}

	if err = storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	if kafkaProducer != nil {
		if err = kafkaProducer.Close(); err != nil {
			log.Error("failed to close kafka producer", sl.Err(err))
		}
	}

	log.Info("application stopped")
}

func setupStorage(dbCfg *config.Database) (imageStore, error) {
	switch dbCfg.Driver {
	case "postgres":
		storage, err := postgres.InitDB(dbCfg)
		if err != nil {
			return nil, err
		}
		return storage, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
	}
}

// setupDisk returns the configured disk. The local disk is returned a second
// time so its files can be served by the router.
func setupDisk(ctx context.Context, diskCfg *config.Disk, log *slog.Logger) (upload.Disk, *local.Disk, error) {
	switch diskCfg.Driver {
	case "local":
		d, err := local.New(diskCfg.Root, diskCfg.PublicPrefix)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	case "s3":
		d, err := s3.New(ctx, &diskCfg.S3, log)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown disk driver %q", diskCfg.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
