// Package app assembles the controller from environment configuration. The
// HTTP server and the Lambda entry point share it.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"livestream-controller/internal/broadcast"
	"livestream-controller/internal/credentials"
	"livestream-controller/internal/platform/config"
	"livestream-controller/internal/platform/metrics"
	"livestream-controller/internal/youtube"
)

// Credential backends.
const (
	BackendS3    = "s3"
	BackendRedis = "redis"
	BackendFile  = "file"
)

// Config is the environment-derived configuration.
type Config struct {
	Backend     string
	Bucket      string
	Key         string
	File        string
	ScratchPath string

	S3Endpoint     string
	S3UsePathStyle bool
	AWSRegion      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RegistrationDelay   time.Duration
	DescriptionTemplate string
}

// ConfigFromEnv reads Config from the process environment.
func ConfigFromEnv() Config {
	return Config{
		Backend:     strings.ToLower(config.GetEnv("CREDENTIAL_BACKEND", BackendS3)),
		Bucket:      config.GetEnv("CREDENTIAL_BUCKET", ""),
		Key:         config.GetEnv("CREDENTIAL_KEY", "token.json"),
		File:        config.GetEnv("CREDENTIAL_FILE", "token.json"),
		ScratchPath: config.GetEnv("CREDENTIAL_SCRATCH_PATH", "/tmp/token.json"),

		S3Endpoint:     config.GetEnv("S3_ENDPOINT", ""),
		S3UsePathStyle: config.GetEnvBool("S3_USE_PATH_STYLE", false),
		AWSRegion:      config.GetEnv("AWS_REGION", "us-east-1"),

		RedisAddr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: config.GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       config.GetEnvInt("REDIS_DB", 0),

		RegistrationDelay:   config.GetEnvDuration("REGISTRATION_DELAY", broadcast.DefaultRegistrationDelay),
		DescriptionTemplate: config.GetEnv("BROADCAST_DESCRIPTION_TEMPLATE", broadcast.DefaultDescriptionTemplate),
	}
}

// App is the assembled controller.
type App struct {
	Handler *broadcast.Handler
	Service *broadcast.Service
	closers []io.Closer
}

// Close releases backend connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New wires the credential store, the YouTube connector and the broadcast
// service. met may be nil.
func New(ctx context.Context, cfg Config, log *slog.Logger, met *metrics.Metrics) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	cacheOpts := []credentials.Option{credentials.WithLogger(log)}
	if cfg.ScratchPath != "" {
		cacheOpts = append(cacheOpts, credentials.WithScratchFile(cfg.ScratchPath))
	}
	if met != nil {
		cacheOpts = append(cacheOpts, credentials.WithRefreshHook(met.IncCredentialRefreshes))
	}
	cache := credentials.NewCache(store, credentials.OAuthRefresher{}, cacheOpts...)

	svc := broadcast.NewService(youtube.NewConnector(cache, log),
		broadcast.WithLogger(log),
		broadcast.WithRegistrationDelay(cfg.RegistrationDelay),
		broadcast.WithDescriptionTemplate(cfg.DescriptionTemplate),
	)

	a.Service = svc
	a.Handler = broadcast.NewHandler(svc, log, met)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg Config, log *slog.Logger) (credentials.BlobStore, error) {
	switch cfg.Backend {
	case BackendS3:
		store, err := credentials.NewS3Store(ctx, credentials.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.AWSRegion,
			Bucket:       cfg.Bucket,
			Key:          cfg.Key,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		log.Info("credential store configured", "backend", cfg.Backend, "location", store.Location())
		return store, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, client)
		log.Info("credential store configured", "backend", cfg.Backend, "addr", cfg.RedisAddr, "key", cfg.Key)
		return credentials.NewRedisStore(client, cfg.Key), nil

	case BackendFile:
		log.Info("credential store configured", "backend", cfg.Backend, "path", cfg.File)
		return credentials.NewFileStore(cfg.File), nil

	default:
		return nil, fmt.Errorf("unknown CREDENTIAL_BACKEND %q", cfg.Backend)
	}
}
