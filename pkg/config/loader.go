package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 0. 先加载 .env (如果有)，让下面的 AutomaticEnv 能读到
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 -> ./.mercari -> ~/.mercari
		viper.AddConfigPath(".")
		viper.AddConfigPath(".mercari")
		viper.AddConfigPath(filepath.Join(home, ".mercari"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (MERCARI_DATABASE_PATH 等)
	viper.SetEnvPrefix("MERCARI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// 前端地址沿用历史上的 FRONT_URL
	if err := viper.BindEnv("server.front_url", "FRONT_URL", "MERCARI_SERVER_FRONT_URL"); err != nil {
		return err
	}

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// 没有配置文件时只用默认值和环境变量
			slog.Debug("no config file found, using defaults/env vars")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		slog.Info("using config file", slog.String("path", viper.ConfigFileUsed()))
	}

	return nil
}

// DefaultStoragePath 返回各存储后端在工作目录下的默认位置
// disk 是目录，bolt/pebble 各自一个文件/目录，不能共用 images
func DefaultStoragePath(storageType string) string {
	wd, _ := os.Getwd()
	switch storageType {
	case "bolt":
		return filepath.Join(wd, "images.bolt")
	case "pebble":
		return filepath.Join(wd, "images.pebble")
	default:
		return filepath.Join(wd, "images")
	}
}

func setDefaults() {
	wd, _ := os.Getwd()

	// HTTP 服务
	viper.SetDefault("server.addr", ":9000")
	viper.SetDefault("server.front_url", "http://localhost:3000")
	viper.SetDefault("server.max_upload_mb", 32)

	// 数据库默认值
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", filepath.Join(wd, "db", "mercari.sqlite3"))
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	// 存储默认值
	// storage.path 没有固定默认值，按 storage.type 在 FromViper 里补，见 DefaultStoragePath
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.cache_ttl", "24h")

	// 图片
	viper.SetDefault("image.naming", "hash")
	viper.SetDefault("image.default", "default.jpg")

	// 日志
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
