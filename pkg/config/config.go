package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 是进程启动时构造一次、显式传递的配置
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Image    ImageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr        string
	FrontURL    string
	MaxUploadMB int64
}

type DatabaseConfig struct {
	Driver   string // sqlite | postgres | jsonfile
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

type StorageConfig struct {
	Type     string // disk | s3 | bolt | pebble
	Path     string
	S3       S3Config
	RedisURL string
	CacheTTL time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

type ImageConfig struct {
	Naming  string // hash | id
	Default string
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

// FromViper 把 Viper 中的扁平 key 组装成 Config
func FromViper() Config {
	cfg := Config{
		Server: ServerConfig{
			Addr:        viper.GetString("server.addr"),
			FrontURL:    viper.GetString("server.front_url"),
			MaxUploadMB: viper.GetInt64("server.max_upload_mb"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("database.driver"),
			Path:     viper.GetString("database.path"),
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			DBName:   viper.GetString("database.dbname"),
			SSLMode:  viper.GetString("database.sslmode"),
			Debug:    viper.GetBool("database.debug"),
		},
		Storage: StorageConfig{
			Type: viper.GetString("storage.type"),
			Path: viper.GetString("storage.path"),
			S3: S3Config{
				Endpoint:        viper.GetString("storage.s3.endpoint"),
				Region:          viper.GetString("storage.s3.region"),
				Bucket:          viper.GetString("storage.s3.bucket"),
				Prefix:          viper.GetString("storage.s3.prefix"),
				AccessKeyID:     viper.GetString("storage.s3.access_key_id"),
				SecretAccessKey: viper.GetString("storage.s3.secret_access_key"),
			},
			RedisURL: viper.GetString("storage.redis_url"),
			CacheTTL: viper.GetDuration("storage.cache_ttl"),
		},
		Image: ImageConfig{
			Naming:  viper.GetString("image.naming"),
			Default: viper.GetString("image.default"),
		},
		Log: LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath(cfg.Storage.Type)
	}
	return cfg
}

// NewLogger 根据配置构造 slog.Logger
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", c.Format)
}
