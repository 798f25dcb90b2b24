package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"simplemercari/pkg/app"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/meta"
	"simplemercari/pkg/storage"
	"simplemercari/pkg/storage/disk"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp 是所有 Service 测试共享的基础设施初始化逻辑
// backend 为 nil 时使用临时目录上的磁盘存储
func setupTestApp(t *testing.T, naming imagestore.Naming, backend storage.Store) *app.App {
	t.Helper()

	// 1. Store
	if backend == nil {
		store, err := disk.NewAdapter(filepath.Join(t.TempDir(), "images"))
		require.NoError(t, err)
		backend = store
	}
	images := imagestore.New(backend, imagestore.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, images.EnsureDefault(context.Background()))

	// 2. DB & Meta
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := meta.NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(&meta.Category{}, &meta.Item{}))
	repo := meta.NewRepository(metaDB)
	t.Cleanup(func() { repo.Close() })

	return &app.App{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Catalog: repo,
		Images:  images,
		Naming:  naming,
	}
}

var errDiskFull = errors.New("disk full")

// failingStore 在写入指定文件名以外的图片时报错
type failingStore struct {
	storage.Store
}

func (f *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if name == imagestore.DefaultName {
		return f.Store.Put(ctx, name, data)
	}
	return errDiskFull
}
