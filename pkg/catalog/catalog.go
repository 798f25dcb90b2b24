// Package catalog 定义商品目录的领域模型与存储接口。
// SQL 实现见 pkg/meta，单文件实现见 pkg/catalog/jsonfile。
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"simplemercari/pkg/types"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidItem  = errors.New("invalid item")
	// ErrCorrupted 表示持久化的目录可以解析，但结构不合法
	ErrCorrupted = errors.New("catalog storage is corrupted")
)

// Item 是对外展示的商品，已经 join 了分类名
type Item struct {
	ID            types.ItemID `json:"id"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	ImageFilename string       `json:"image_filename"`
}

type Category struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ImageBinder 在插入事务内、拿到新 id 之后被调用
// 返回最终的图片文件名；返回错误会回滚整条插入
type ImageBinder func(ctx context.Context, id types.ItemID) (string, error)

// NewItem 是一次提交
// ImageFilename 与 BindImage 二选一：内容寻址时文件名提前可知，
// 按 id 命名时由 BindImage 在事务内生成并落盘
type NewItem struct {
	Name          string
	Category      string
	ImageFilename string
	BindImage     ImageBinder
}

// Store 是目录存储的抽象
type Store interface {
	// InsertItem 原子地 find-or-create 分类并插入商品，返回带 id 的商品
	InsertItem(ctx context.Context, in NewItem) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	SearchItems(ctx context.Context, keyword string) ([]Item, error)
	GetItem(ctx context.Context, id types.ItemID) (*Item, error)
	// LatestItemID 返回最近插入的商品 id，目录为空时返回 0
	LatestItemID(ctx context.Context) (types.ItemID, error)
	ListCategories(ctx context.Context) ([]Category, error)
	Close() error
}

// NormalizeCategory 分类名统一小写并去掉首尾空白
func NormalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FoldName 是搜索用的大小写折叠，所有 Store 实现共用
// 数据库自带的 LOWER() 在 SQLite 上只处理 ASCII，所以折叠统一在 Go 里做
func FoldName(name string) string {
	return strings.ToLower(name)
}

// Validate 检查必填字段，返回规范化后的分类名
func (in NewItem) Validate() (string, error) {
	category := NormalizeCategory(in.Category)
	if strings.TrimSpace(in.Name) == "" || category == "" {
		return "", fmt.Errorf("%w: name and category are required", ErrInvalidItem)
	}
	if in.ImageFilename == "" && in.BindImage == nil {
		return "", fmt.Errorf("%w: image is required", ErrInvalidItem)
	}
	return category, nil
}
