package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zentinela/blog/internal/blogservice"
	"github.com/zentinela/blog/internal/common"
	"golang.org/x/time/rate"
)

type application struct {
	config      *common.Config
	logger      *slog.Logger
	blogService *blogservice.BlogService
	// cache holds rendered list responses; it is separate from the fallback catalog.
	cache   *common.Cache
	limiter *rate.Limiter
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// configPath returns ".env" when present so a bare environment also works.
func configPath() string {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return ".env"
}

func newFallbackSource(path string) (*blogservice.FallbackSource, error) {
	c := common.NewCache(common.NoExpiration, 0)
	if path == "" {
		return blogservice.NewDefaultFallbackSource(c)
	}
	return blogservice.LoadFallbackSource(c, path)
}

func main() {
	cfg, err := common.LoadConfig(configPath())
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	policy, err := blogservice.ParseReadPolicy(cfg.ReadPolicy)
	if err != nil {
		logger.Error("invalid read policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	err = common.Migrate(db, cfg.DB.MigrationsPath)
	if err != nil {
		logger.Error("failed to migrate the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fallback, err := newFallbackSource(cfg.FallbackCatalog)
	if err != nil {
		logger.Error("failed to load the fallback catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		cache:   common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The broker is optional: without it post events are not published and only
	// this instance's cache is flushed on writes.
	var producer common.MessageProducer
	if uri := cfg.RabbitMQ.URI(); uri != "" {
		broker, err := common.NewMessageBroker(uri)
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		err = common.SetupBlogExchange(broker)
		if err != nil {
			logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		queue, err := common.DeclarePostChangedQueue(broker)
		if err != nil {
			logger.Error("failed to declare the post changed queue", slog.String("error", err.Error()))
			os.Exit(1)
		}

		producer = broker
		app.invalidateCacheOnPostChange(ctx, broker, queue)
	}

	app.blogService = blogservice.NewBlogService(db, fallback, producer, policy, logger)

	logger.Info("blog service ready", slog.String("read_policy", policy.String()), slog.Bool("broker", producer != nil))

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
