package service

import (
	"context"
	"fmt"
	"log/slog"

	"simplemercari/pkg/app"
	"simplemercari/pkg/catalog"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/metrics"
	"simplemercari/pkg/types"
)

// Submission 是一次上架请求
type Submission struct {
	Name     string
	Category string
	// ImageFilename 只用来判断扩展名
	ImageFilename string
	Image         []byte
}

// CatalogService 编排图片落盘与商品插入
// HTTP handler 和 CLI 都只通过它访问目录
type CatalogService struct {
	app *app.App
}

func NewCatalogService(application *app.App) *CatalogService {
	return &CatalogService{app: application}
}

// Submit 保存图片并插入商品
//
// hash 命名：文件名由内容决定，先写图片再插入，相同图片只存一份。
// id 命名：在插入事务里拿到新 id 后再写图片，写失败则整条插入回滚。
func (s *CatalogService) Submit(ctx context.Context, sub Submission) (*catalog.Item, error) {
	// 1. 校验上传
	ext, err := imagestore.UploadExt(sub.ImageFilename)
	if err != nil {
		return nil, err
	}
	if len(sub.Image) == 0 {
		return nil, fmt.Errorf("%w: image is empty", catalog.ErrInvalidItem)
	}

	in := catalog.NewItem{Name: sub.Name, Category: sub.Category}

	// 2. 按命名方式决定顺序
	switch s.app.Naming {
	case imagestore.NamingID:
		in.BindImage = func(ctx context.Context, id types.ItemID) (string, error) {
			name := imagestore.NameForID(id, ext)
			if err := s.app.Images.Save(ctx, name, sub.Image); err != nil {
				return "", err
			}
			return name, nil
		}
	default:
		// 先校验再写图片，避免非法商品留下孤儿图片
		in.ImageFilename = imagestore.NameForContent(sub.Image, ext)
		if _, err := in.Validate(); err != nil {
			return nil, err
		}
		if _, err := s.app.Images.SaveContent(ctx, sub.Image, ext); err != nil {
			return nil, err
		}
	}

	// 3. 插入
	item, err := s.app.Catalog.InsertItem(ctx, in)
	if err != nil {
		return nil, err
	}

	metrics.ItemsSubmitted.Inc()
	s.app.Logger.InfoContext(ctx, "item submitted",
		slog.Uint64("id", uint64(item.ID)),
		slog.String("name", item.Name),
		slog.String("category", item.Category),
		slog.String("image", item.ImageFilename),
	)
	return item, nil
}

func (s *CatalogService) List(ctx context.Context) ([]catalog.Item, error) {
	return s.app.Catalog.ListItems(ctx)
}

func (s *CatalogService) Search(ctx context.Context, keyword string) ([]catalog.Item, error) {
	return s.app.Catalog.SearchItems(ctx, keyword)
}

func (s *CatalogService) Get(ctx context.Context, id types.ItemID) (*catalog.Item, error) {
	return s.app.Catalog.GetItem(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	return s.app.Catalog.ListCategories(ctx)
}

// LatestID 只用于展示 (mercari status)
func (s *CatalogService) LatestID(ctx context.Context) (types.ItemID, error) {
	return s.app.Catalog.LatestItemID(ctx)
}

// Image 读取图片，缺失时返回默认图片
// 调用方负责关闭返回的 Blob
func (s *CatalogService) Image(ctx context.Context, filename string) (*imagestore.Blob, error) {
	return s.app.Images.Load(ctx, filename)
}
