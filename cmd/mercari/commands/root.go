package commands

import (
	"fmt"
	"os"

	"simplemercari/pkg/app"
	"simplemercari/pkg/config"
	"simplemercari/pkg/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	MC *app.App
	// Svc 包装 MC，子命令只通过它读写目录
	Svc *service.CatalogService
)

// 不需要本地 App 的命令
var standalone = map[string]bool{
	"init": true,
	"push": true,
}

var rootCmd = &cobra.Command{
	Use:          "mercari",
	Short:        "Simple Mercari: a tiny item catalog",
	SilenceUsage: true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isRemote(cmd) {
			return nil
		}
		// 测试里会直接注入 MC
		if MC != nil {
			return nil
		}

		cfg := config.FromViper()
		logger, err := cfg.Log.NewLogger(os.Stderr)
		if err != nil {
			return err
		}

		// 统一初始化 App
		MC, err = app.NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			// 友好的错误提示
			return fmt.Errorf("failed to initialize mercari: %w\n(Did you run 'mercari init'?)", err)
		}
		Svc = service.NewCatalogService(MC)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if MC == nil || isRemote(cmd) {
			return nil
		}
		err := MC.Close()
		MC, Svc = nil, nil
		return err
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.mercari/config.yaml or $HOME/.mercari/config.yaml)")

	// 2. 常用路径参数，并绑定到 Viper
	// 用户既可以在 yaml 里写，也可以用命令行覆盖
	rootCmd.PersistentFlags().String("db-path", "", "SQLite database or JSON catalog file")
	rootCmd.PersistentFlags().String("images", "", "Directory (or bolt/pebble file) holding item images")
	rootCmd.PersistentFlags().String("naming", "", "Image naming scheme: hash | id")
	for key, flag := range map[string]string{
		"database.path": "db-path",
		"storage.path":  "images",
		"image.naming":  "naming",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Println("Failed to bind flag:", err)
			os.Exit(1)
		}
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
