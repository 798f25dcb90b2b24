package meta

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 封装所有对 SQL 数据库的操作，实现 catalog.Store
type Repository struct {
	db *DB
}

var _ catalog.Store = (*Repository)(nil)

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// -----------------------------------------------------------------------------
// 1. 写入 (Insert with category find-or-create)
// -----------------------------------------------------------------------------

// InsertItem 在一个事务里完成：分类 find-or-create -> 插入商品 -> (可选) 绑定图片
// 返回的 id 来自本事务的 INSERT，不依赖额外的 "latest id" 查询
func (r *Repository) InsertItem(ctx context.Context, in catalog.NewItem) (*catalog.Item, error) {
	categoryName, err := in.Validate()
	if err != nil {
		return nil, err
	}

	var out *catalog.Item
	err = r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 分类去重
		category, err := findOrCreateCategory(tx, categoryName)
		if err != nil {
			return err
		}

		// 2. 插入商品
		model := Item{
			Name:          in.Name,
			SearchName:    catalog.FoldName(in.Name),
			CategoryID:    category.ID,
			ImageFilename: in.ImageFilename,
		}
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		// 3. 按 id 命名的图片：拿到 id 之后再落盘，失败则整个事务回滚
		if in.BindImage != nil {
			name, err := in.BindImage(ctx, types.ItemID(model.ID))
			if err != nil {
				return err
			}
			if err := tx.Model(&model).Update("image_filename", name).Error; err != nil {
				return fmt.Errorf("failed to bind image: %w", err)
			}
			model.ImageFilename = name
		}

		model.Category = *category
		item := toItem(model)
		out = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// findOrCreateCategory 依赖 name 上的唯一索引：
// INSERT ... ON CONFLICT (name) DO NOTHING，然后重新查询拿到 id
// 并发首次使用同一分类时，只有一个 INSERT 生效
func findOrCreateCategory(tx *gorm.DB, name string) (*Category, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&Category{Name: name}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}

	var category Category
	if err := tx.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}
	return &category, nil
}

// -----------------------------------------------------------------------------
// 2. 查询 (List / Search / Get)
// -----------------------------------------------------------------------------

func (r *Repository) itemQuery(ctx context.Context) *gorm.DB {
	return r.db.GetConn().WithContext(ctx).
		Model(&Item{}).
		Joins("Category").
		Order("items.id ASC")
}

func (r *Repository) ListItems(ctx context.Context) ([]catalog.Item, error) {
	var rows []Item
	if err := r.itemQuery(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return toItems(rows), nil
}

// SearchItems 只匹配商品名，大小写不敏感的子串匹配
// 两边都用 catalog.FoldName 折叠，非 ASCII 字母在 SQLite 和 Postgres 上结果一致
func (r *Repository) SearchItems(ctx context.Context, keyword string) ([]catalog.Item, error) {
	pattern := "%" + escapeLike(catalog.FoldName(keyword)) + "%"

	var rows []Item
	err := r.itemQuery(ctx).
		Where("items.search_name LIKE ? ESCAPE '\\'", pattern).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return toItems(rows), nil
}

func (r *Repository) GetItem(ctx context.Context, id types.ItemID) (*catalog.Item, error) {
	// 主键是有符号 BIGINT，超出范围的 id 不可能存在
	if uint64(id) > math.MaxInt64 {
		return nil, catalog.ErrItemNotFound
	}

	var row Item
	err := r.itemQuery(ctx).
		Where("items.id = ?", uint64(id)).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	item := toItem(row)
	return &item, nil
}

// LatestItemID 仅用于展示 (例如 status 命令)
// 提交流程使用 InsertItem 返回的 id，避免并发写者之间的竞态
func (r *Repository) LatestItemID(ctx context.Context) (types.ItemID, error) {
	var latest uint64
	err := r.db.GetConn().WithContext(ctx).
		Model(&Item{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query latest item id: %w", err)
	}
	return types.ItemID(latest), nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []Category
	if err := r.db.GetConn().WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]catalog.Category, len(rows))
	for i, c := range rows {
		categories[i] = catalog.Category{ID: c.ID, Name: c.Name}
	}
	return categories, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toItem(m Item) catalog.Item {
	return catalog.Item{
		ID:            types.ItemID(m.ID),
		Name:          m.Name,
		Category:      m.Category.Name,
		ImageFilename: m.ImageFilename,
	}
}

func toItems(rows []Item) []catalog.Item {
	items := make([]catalog.Item, len(rows))
	for i, row := range rows {
		items[i] = toItem(row)
	}
	return items
}
