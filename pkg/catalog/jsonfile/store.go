// Package jsonfile 是基于单个 JSON 文件的目录存储 (items.json)。
// 所有操作由一把互斥锁串行化，写入走 临时文件 + Rename。
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/types"
)

type fileItem struct {
	ID            types.ItemID `json:"id"`
	Name          string       `json:"name"`
	CategoryID    uint64       `json:"category_id"`
	ImageFilename string       `json:"image_filename"`
}

type document struct {
	Items      []fileItem         `json:"items"`
	Categories []catalog.Category `json:"categories"`
}

// Store 实现 catalog.Store
type Store struct {
	path string
	mu   sync.Mutex
}

var _ catalog.Store = (*Store)(nil)

// Open 打开目录文件，不存在时创建一个空目录
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog dir: %w", err)
		}
		if err := s.save(&document{Items: []fileItem{}, Categories: []catalog.Category{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	// 启动时就校验一次，尽早发现损坏
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load 读取并校验整个文件
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	// 1. 必须是一个 JSON 对象，且带有 "items" 字段
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON object: %v", catalog.ErrCorrupted, s.path, err)
	}
	if _, ok := raw["items"]; !ok {
		return nil, fmt.Errorf("%w: %s has no \"items\" field", catalog.ErrCorrupted, s.path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCorrupted, err)
	}

	// 2. 引用完整性：商品必须指向存在的分类，id 不能重复
	known := make(map[uint64]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		known[c.ID] = true
	}
	seen := make(map[types.ItemID]bool, len(doc.Items))
	for _, it := range doc.Items {
		if it.ID.IsZero() || seen[it.ID] {
			return nil, fmt.Errorf("%w: invalid or duplicate item id %d", catalog.ErrCorrupted, it.ID)
		}
		if !known[it.CategoryID] {
			return nil, fmt.Errorf("%w: item %d references unknown category %d", catalog.ErrCorrupted, it.ID, it.CategoryID)
		}
		seen[it.ID] = true
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".items-*")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (d *document) categoryName(id uint64) string {
	for _, c := range d.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (d *document) view(it fileItem) catalog.Item {
	return catalog.Item{
		ID:            it.ID,
		Name:          it.Name,
		Category:      d.categoryName(it.CategoryID),
		ImageFilename: it.ImageFilename,
	}
}

// findOrCreateCategory 在锁内执行，天然原子
func (d *document) findOrCreateCategory(name string) uint64 {
	var maxID uint64
	for _, c := range d.Categories {
		if c.Name == name {
			return c.ID
		}
		maxID = max(maxID, c.ID)
	}
	d.Categories = append(d.Categories, catalog.Category{ID: maxID + 1, Name: name})
	return maxID + 1
}

func (d *document) latestID() types.ItemID {
	var latest types.ItemID
	for _, it := range d.Items {
		latest = max(latest, it.ID)
	}
	return latest
}

func (s *Store) InsertItem(ctx context.Context, in catalog.NewItem) (*catalog.Item, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	it := fileItem{
		ID:            doc.latestID() + 1,
		Name:          in.Name,
		CategoryID:    doc.findOrCreateCategory(category),
		ImageFilename: in.ImageFilename,
	}

	// 图片落盘失败时直接返回，文件未被改写，相当于回滚
	if in.BindImage != nil {
		name, err := in.BindImage(ctx, it.ID)
		if err != nil {
			return nil, err
		}
		it.ImageFilename = name
	}

	doc.Items = append(doc.Items, it)
	if err := s.save(doc); err != nil {
		return nil, err
	}

	item := doc.view(it)
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, doc.view(it))
	}
	return items, nil
}

func (s *Store) SearchItems(ctx context.Context, keyword string) ([]catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	needle := catalog.FoldName(keyword)
	items := []catalog.Item{}
	for _, it := range doc.Items {
		if strings.Contains(catalog.FoldName(it.Name), needle) {
			items = append(items, doc.view(it))
		}
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id types.ItemID) (*catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, it := range doc.Items {
		if it.ID == id {
			item := doc.view(it)
			return &item, nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

func (s *Store) LatestItemID(ctx context.Context) (types.ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	return doc.latestID(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, len(doc.Categories))
	copy(categories, doc.Categories)
	return categories, nil
}

func (s *Store) Close() error { return nil }
