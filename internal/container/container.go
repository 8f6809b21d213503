package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/browser/internal/api"
	"storefront/browser/internal/cache"
	"storefront/browser/internal/client"
	"storefront/browser/internal/config"
	"storefront/browser/internal/repository"
	"storefront/browser/internal/review"
	"storefront/browser/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.CatalogClient
	Categories cache.CategoryCache
	Snapshots  repository.ProductRepository
	Loader     *service.DetailLoader
	API        *api.Server

	server *http.Server
	db     *pgxpool.Pool
	redis  *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	if err := configureLogging(cfg.Log); err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
		Client: client.NewCatalogClient(cfg.Catalog),
	}

	// Categories cache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Categories = cache.NewRedisCategoryCache(rdb, ttl(cfg.Redis.CategoriesTTL))
	} else {
		container.Categories = cache.NewMemoryCategoryCache(ttl(cfg.Redis.CategoriesTTL))
	}

	// Product snapshot store
	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		container.db = db

		snapshots := repository.NewProductRepository(db)
		if err := snapshots.EnsureSchema(context.Background()); err != nil {
			container.Close()
			return nil, err
		}
		log.Info("✅ Product snapshot store ready")
		container.Snapshots = snapshots
	}

	bounds := review.FormBounds{
		Create: review.Bounds{Min: cfg.Reviews.MinRating, Max: cfg.Reviews.MaxRating},
		Edit:   review.Bounds{Min: cfg.Reviews.EditMinRating, Max: cfg.Reviews.EditMaxRating},
	}
	container.Loader = service.NewDetailLoader(container.Client, container.Snapshots, bounds)
	container.API = api.NewServer(container.Client, container.Categories, container.Loader)

	container.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           container.API.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return container, nil
}

// Run serves the API until ctx is cancelled, then shuts the server down gracefully.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 Listening on %s", c.server.Addr)
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(c.Config.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		c.API.Close()
		if err := c.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}
	if closer, ok := c.Client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("⚠️ Failed to close catalog client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}

func configureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func ttl(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
