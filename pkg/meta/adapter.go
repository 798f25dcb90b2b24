package meta

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"simplemercari/pkg/catalog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config 数据库配置
type Config struct {
	Driver string // "sqlite" (默认) 或 "postgres"

	// SQLite: 数据库文件路径，或者完整的 "file:..." DSN
	Path string

	// Postgres
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable" for local

	// Debug 打开 GORM 的全量 SQL 日志
	Debug bool
}

// DB 封装了 GORM 实例，作为元数据层的入口
type DB struct {
	conn *gorm.DB
}

func (cfg Config) dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite path not set")
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

// sqliteDSN 为文件数据库打开外键约束，并设置 busy timeout (CLI 与 server 可能同时打开同一个文件)
func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			_ = os.MkdirAll(dir, 0755)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// NewDB 初始化数据库连接并建表
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 sql.DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverPostgres {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite 只允许一个写者：用单连接把所有写操作串行化
		// 连接不过期，否则内存数据库会随连接一起消失
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	// 验证连接是否存活
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	metaDB := &DB{conn: db}
	if err := metaDB.AutoMigrate(&Category{}, &Item{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}
	if err := metaDB.BackfillSearchNames(); err != nil {
		return nil, fmt.Errorf("search name backfill failed: %w", err)
	}
	return metaDB, nil
}

// NewWithConn 允许使用现有的 GORM 连接初始化 DB。
// 这对于依赖注入、复用连接池或单元测试非常有用。
func NewWithConn(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

// AutoMigrate 自动迁移表结构
func (d *DB) AutoMigrate(models ...any) error {
	return d.conn.AutoMigrate(models...)
}

// BackfillSearchNames 补齐 search_name 列出现之前写入的行
func (d *DB) BackfillSearchNames() error {
	var rows []Item
	if err := d.conn.Where("search_name = ?", "").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		err := d.conn.Model(&Item{}).Where("id = ?", row.ID).
			Update("search_name", catalog.FoldName(row.Name)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) GetConn() *gorm.DB {
	return d.conn
}

// Close 关闭底层连接池
func (d *DB) Close() error {
	sqlDB, err := d.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
