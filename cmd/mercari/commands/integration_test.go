package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"simplemercari/pkg/app"
	"simplemercari/pkg/config"
	"simplemercari/pkg/ignore"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/server"
	"simplemercari/pkg/service"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupIntegrationEnv 搭建一个使用 真实文件系统 + SQLite 文件 的集成环境
func setupIntegrationEnv(t *testing.T, naming string) *app.App {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(tmpDir, "db", "mercari.sqlite3")},
		Storage:  config.StorageConfig{Type: "disk", Path: filepath.Join(tmpDir, "images")},
		Image:    config.ImageConfig{Naming: naming},
	}
	application, err := app.NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	// 因为 cmd 包依赖全局变量 MC/Svc，我们在测试里临时覆盖它
	MC = application
	Svc = service.NewCatalogService(application)
	t.Cleanup(func() {
		application.Close()
		MC, Svc = nil, nil
	})
	return application
}

// run 直接调用 RunE，返回 stdout
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestIntegration_AddListShowCat(t *testing.T) {
	setupIntegrationEnv(t, "hash")
	img := filepath.Join(t.TempDir(), "bike.jpg")
	writeFile(t, img, []byte{0xFF, 0xD8, 0xFF, 0xD9, 0x00})

	// mercari add bike.jpg -n bike -c Vehicles
	addName, addCategory = "bike", "Vehicles"
	out, err := run(t, addCmd, img)
	require.NoError(t, err)
	assert.Contains(t, out, "Added item 1: bike [vehicles]")

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "bike")
	assert.Contains(t, out, "vehicles")

	out, err = run(t, searchCmd, "BIK")
	require.NoError(t, err)
	assert.Contains(t, out, "bike")

	out, err = run(t, searchCmd, "car")
	require.NoError(t, err)
	assert.Contains(t, out, "(no items)")

	out, err = run(t, showCmd, "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "vehicles"`)

	_, err = run(t, showCmd, "abc")
	assert.Error(t, err)

	name := imagestore.NameForContent([]byte{0xFF, 0xD8, 0xFF, 0xD9, 0x00}, ".jpg")
	out, err = run(t, catCmd, name)
	require.NoError(t, err)
	assert.Equal(t, string([]byte{0xFF, 0xD8, 0xFF, 0xD9, 0x00}), out)

	out, err = run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Latest item: 1")
	assert.Contains(t, out, "naming: hash")

	out, err = run(t, categoriesCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "vehicles")
}

func TestIntegration_AddRejectsPNG(t *testing.T) {
	setupIntegrationEnv(t, "id")
	img := filepath.Join(t.TempDir(), "bike.png")
	writeFile(t, img, []byte("png"))

	addName, addCategory = "bike", "vehicles"
	_, err := run(t, addCmd, img)
	assert.ErrorIs(t, err, imagestore.ErrUnsupportedImage)

	out, err := run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Latest item: (none)")
}

func TestIntegration_Import(t *testing.T) {
	application := setupIntegrationEnv(t, "id")
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "toys", "bear.jpg"), []byte("bear"))
	writeFile(t, filepath.Join(root, "toys", "robot.jpeg"), []byte("robot"))
	writeFile(t, filepath.Join(root, "Books", "novel.jpg"), []byte("novel"))
	writeFile(t, filepath.Join(root, "Books", "notes.txt"), []byte("not an image"))
	writeFile(t, filepath.Join(root, "drafts", "wip.jpg"), []byte("wip"))
	writeFile(t, filepath.Join(root, "loose.jpg"), []byte("loose"))
	writeFile(t, filepath.Join(root, ignore.FileName), []byte("drafts\n"))

	importJobs = 3
	out, err := run(t, importCmd, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 items")
	assert.Contains(t, out, "Skipped loose.jpg")

	ctx := context.Background()
	items, err := application.Catalog.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	names := map[string]string{}
	for _, it := range items {
		names[it.Name] = it.Category
		// id 命名：文件名就是 id
		assert.Equal(t, it.ID.String()+".jpg", it.ImageFilename)
	}
	assert.Equal(t, map[string]string{"bear": "toys", "robot": "toys", "novel": "books"}, names)

	cats, err := application.Catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

// 导入根目录包含自己的图片库时，不会把已入库的图片再导一遍
func TestIntegration_ImportSkipsLibrary(t *testing.T) {
	application := setupIntegrationEnv(t, "id")
	root := filepath.Dir(application.Config.Storage.Path)

	_, err := Svc.Submit(context.Background(), service.Submission{
		Name: "bear", Category: "toys", ImageFilename: "bear.jpg", Image: []byte("bear"),
	})
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "toys", "robot.jpg"), []byte("robot"))
	writeFile(t, filepath.Join(root, "toys", "default.jpg"), []byte("placeholder"))

	importJobs = 2
	out, err := run(t, importCmd, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 items")

	items, err := application.Catalog.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestIntegration_ImportRejectsZeroJobs(t *testing.T) {
	application := setupIntegrationEnv(t, "hash")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "toys", "bear.jpg"), []byte("bear"))

	importJobs = 0
	t.Cleanup(func() { importJobs = 4 })
	_, err := run(t, importCmd, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--jobs")

	items, err := application.Catalog.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIntegration_Push(t *testing.T) {
	application := setupIntegrationEnv(t, "hash")
	srv := server.New(Svc, config.ServerConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	img := filepath.Join(t.TempDir(), "lamp.jpg")
	writeFile(t, img, []byte("lamp"))

	pushServer, pushName, pushCategory = ts.URL, "lamp", "Home"
	out, err := run(t, pushCmd, img)
	require.NoError(t, err)
	assert.Contains(t, out, "item received: lamp")
	assert.Contains(t, out, "category: home")

	items, err := application.Catalog.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "home", items[0].Category)

	// 服务端拒绝的上传要报错
	bad := filepath.Join(t.TempDir(), "lamp.gif")
	writeFile(t, bad, []byte("gif"))
	_, err = run(t, pushCmd, bad)
	assert.Error(t, err)
}

// 读命令带 --server 时走 HTTP，不碰本地 App
func TestIntegration_RemoteReads(t *testing.T) {
	setupIntegrationEnv(t, "id")
	srv := server.New(Svc, config.ServerConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err := Svc.Submit(context.Background(), service.Submission{
		Name: "Road Bike", Category: "Vehicles", ImageFilename: "bike.jpg", Image: []byte("bike"),
	})
	require.NoError(t, err)

	// 远程模式下本地 Svc 不可用也能读
	MC, Svc = nil, nil
	remoteServer = ts.URL
	t.Cleanup(func() { remoteServer = "" })

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Road Bike")
	assert.Contains(t, out, "1.jpg")

	out, err = run(t, searchCmd, "ROAD")
	require.NoError(t, err)
	assert.Contains(t, out, "Road Bike")

	out, err = run(t, showCmd, "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "vehicles"`)

	_, err = run(t, showCmd, "99")
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	t.Cleanup(func() { remoteServer = "" })

	assert.False(t, isRemote(listCmd))
	assert.False(t, isRemote(addCmd))
	assert.True(t, isRemote(initCmd))

	require.NoError(t, listCmd.Flags().Set("server", "http://localhost:9000"))
	assert.True(t, isRemote(listCmd))
	assert.True(t, isRemote(showCmd), "flag 共享同一个变量")
}

func TestIntegration_Init(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := run(t, initCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized empty mercari catalog")

	assert.FileExists(t, filepath.Join(dir, ".mercari", "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, ".mercari", "db", "mercari.sqlite3"))
	assert.FileExists(t, filepath.Join(dir, ".mercari", "images", imagestore.DefaultName))

	out, err = run(t, initCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}
