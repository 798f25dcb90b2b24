// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/catalog/jsonfile"
	"simplemercari/pkg/config"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/meta"
	"simplemercari/pkg/storage"
	"simplemercari/pkg/storage/bolt"
	"simplemercari/pkg/storage/cache"
	"simplemercari/pkg/storage/disk"
	"simplemercari/pkg/storage/pebble"
	"simplemercari/pkg/storage/s3"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务，HTTP 服务和 CLI 共用
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog catalog.Store
	Images  *imagestore.Store
	Naming  imagestore.Naming

	// 需要在退出时释放的底层资源 (bolt/pebble/redis)
	store storage.Store
}

// NewApp 是工厂函数，负责组装这一台机器
// 它只认 Config，不知道具体的 CLI 命令或 HTTP 路由
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	naming, err := imagestore.ParseNaming(cfg.Image.Naming)
	if err != nil {
		return nil, err
	}

	// 1. 初始化图片存储 (Dependency Injection)
	store, err := initStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	images := imagestore.New(store,
		imagestore.WithDefaultName(cfg.Image.Default),
		imagestore.WithLogger(logger),
	)
	// 兜底图片必须一直存在
	if err := images.EnsureDefault(ctx); err != nil {
		closeStore(store)
		return nil, err
	}

	// 2. 初始化目录存储
	cat, err := initCatalog(ctx, cfg.Database)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("failed to init catalog: %w", err)
	}

	logger.Info("app initialized",
		slog.String("database", cfg.Database.Driver),
		slog.String("storage", cfg.Storage.Type),
		slog.String("naming", string(naming)),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: cat,
		Images:  images,
		Naming:  naming,
		store:   store,
	}, nil
}

// initStore 根据 storage.type 选择图片后端，配置了 redis_url 时再包一层存在性缓存
func initStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch cfg.Type {
	case "disk", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("storage path not set")
		}
		store, err = disk.NewAdapter(cfg.Path)
	case "s3":
		store, err = s3.NewAdapter(ctx, s3.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case "bolt":
		store, err = bolt.NewAdapter(cfg.Path)
	case "pebble":
		store, err = pebble.NewAdapter(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisURL == "" {
		return store, nil
	}

	cached, err := cache.NewCachedStore(store, cache.Config{
		RedisURL: cfg.RedisURL,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		closeStore(store)
		return nil, err
	}
	return cached, nil
}

func initCatalog(ctx context.Context, cfg config.DatabaseConfig) (catalog.Store, error) {
	switch cfg.Driver {
	case "jsonfile":
		if cfg.Path == "" {
			return nil, fmt.Errorf("catalog file path not set")
		}
		return jsonfile.Open(cfg.Path)
	case meta.DriverSQLite, meta.DriverPostgres, "":
		db, err := meta.NewDB(ctx, meta.Config{
			Driver:   cfg.Driver,
			Path:     cfg.Path,
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
			Debug:    cfg.Debug,
		})
		if err != nil {
			return nil, err
		}
		return meta.NewRepository(db), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

func closeStore(s storage.Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Close 释放目录和图片后端
func (a *App) Close() error {
	return errors.Join(a.Catalog.Close(), closeStore(a.store))
}
