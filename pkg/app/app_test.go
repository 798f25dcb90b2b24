package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"simplemercari/pkg/config"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/meta"
	"simplemercari/pkg/storage/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "db", "mercari.sqlite3")},
		Storage:  config.StorageConfig{Type: "disk", Path: filepath.Join(dir, "images")},
		Image:    config.ImageConfig{Naming: "hash", Default: "default.jpg"},
	}
}

func TestInitStore_Disk(t *testing.T) {
	// 1. Mock 配置
	cfg := config.StorageConfig{Type: "disk", Path: filepath.Join(t.TempDir(), "images")}

	// 2. 调用私有函数 (因为我们在同一个包)
	store, err := initStore(context.Background(), cfg)

	// 3. 验证
	require.NoError(t, err)
	assert.IsType(t, &disk.Adapter{}, store)
}

func TestInitStore_Bolt(t *testing.T) {
	cfg := config.StorageConfig{Type: "bolt", Path: filepath.Join(t.TempDir(), "images.db")}

	store, err := initStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { closeStore(store) })

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "1.jpg", []byte("x")))
	ok, err := store.Has(ctx, "1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitStore_S3_MissingBucket(t *testing.T) {
	// 故意不设置 bucket
	store, err := initStore(context.Background(), config.StorageConfig{Type: "s3"})
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestInitStore_UnknownType(t *testing.T) {
	store, err := initStore(context.Background(), config.StorageConfig{Type: "ftp"}) // 不支持的类型
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestInitStore_BadRedisURL(t *testing.T) {
	cfg := config.StorageConfig{
		Type:     "disk",
		Path:     t.TempDir(),
		RedisURL: "not-a-url",
	}
	_, err := initStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestInitCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cat, err := initCatalog(ctx, config.DatabaseConfig{Driver: meta.DriverSQLite, Path: filepath.Join(t.TempDir(), "a.sqlite3")})
		require.NoError(t, err)
		defer cat.Close()
		assert.IsType(t, &meta.Repository{}, cat)
	})

	t.Run("jsonfile", func(t *testing.T) {
		cat, err := initCatalog(ctx, config.DatabaseConfig{Driver: "jsonfile", Path: filepath.Join(t.TempDir(), "items.json")})
		require.NoError(t, err)
		defer cat.Close()
		items, err := cat.ListItems(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := initCatalog(ctx, config.DatabaseConfig{Driver: "mysql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestNewApp_WritesDefaultImage(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	application, err := NewApp(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	assert.Equal(t, imagestore.NamingHash, application.Naming)

	blob, err := application.Images.Load(ctx, "missing.jpg")
	require.NoError(t, err)
	defer blob.Close()
	assert.True(t, blob.Fallback)
	data, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNewApp_BadNaming(t *testing.T) {
	cfg := testConfig(t)
	cfg.Image.Naming = "random"

	_, err := NewApp(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, imagestore.ErrUnknownNaming)
}
