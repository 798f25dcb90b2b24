package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"simplemercari/pkg/app"
	"simplemercari/pkg/config"

	"github.com/spf13/cobra"
)

const configTemplate = `# mercari configuration
server:
  addr: ":9000"
  front_url: "http://localhost:3000"
database:
  driver: sqlite
  path: %s
storage:
  # disk | s3 | bolt | pebble；换成 bolt/pebble 时 path 要指向一个文件，例如 images.bolt
  type: disk
  path: %s
image:
  naming: hash
log:
  level: info
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a local catalog in ./.mercari",
	Long:  `Create .mercari/config.yaml, the SQLite database and the image directory (with its default image).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// 1. 获取当前路径
		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		// 2. 定义目录结构
		root := filepath.Join(wd, ".mercari")
		cfgPath := filepath.Join(root, "config.yaml")
		dbPath := filepath.Join(root, "db", "mercari.sqlite3")
		imagesPath := filepath.Join(root, "images")

		// 3. 检查是否已存在
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Fprintf(out, "⚠️  mercari catalog already exists in %s\n", root)
			return nil
		}

		// 4. 写配置
		if err := os.MkdirAll(root, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", root, err)
		}
		if err := os.WriteFile(cfgPath, []byte(fmt.Sprintf(configTemplate, dbPath, imagesPath)), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		// 5. 建表并写入默认图片
		cfg := config.FromViper()
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = dbPath
		cfg.Storage.Type = "disk"
		cfg.Storage.Path = imagesPath
		cfg.Storage.RedisURL = ""
		application, err := app.NewApp(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		if err := application.Close(); err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ Initialized empty mercari catalog in %s\n", root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
