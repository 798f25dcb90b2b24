// Package imagestore 在 storage.Store 之上实现商品图片的命名、保存与读取。
//
// 图片有两种命名方式：
//   - hash: hex(sha256(bytes)) + ext，相同图片天然去重
//   - id:   decimal(item_id) + ext，依赖先插入商品拿到 id
//
// 读取时如果图片缺失，总是退回到默认图片，而不是返回 not found。
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"simplemercari/pkg/core"
	"simplemercari/pkg/metrics"
	"simplemercari/pkg/storage"
	"simplemercari/pkg/types"
)

const (
	// Ext 是唯一允许读取的扩展名
	Ext = ".jpg"
	// DefaultName 是缺省的兜底图片
	DefaultName = "default.jpg"
)

var (
	ErrInvalidExtension = errors.New("image path does not end with .jpg")
	ErrUnsupportedImage = errors.New("image must be a .jpg or .jpeg file")
	ErrUnknownNaming    = errors.New("unknown image naming scheme")
)

// Naming 决定图片文件名如何生成
type Naming string

const (
	NamingHash Naming = "hash"
	NamingID   Naming = "id"
)

func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(s)) {
	case NamingHash, "":
		return NamingHash, nil
	case NamingID:
		return NamingID, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNaming, s)
}

// Blob 是一次读取的结果
// Fallback 为 true 表示请求的图片不存在，返回的是默认图片
type Blob struct {
	io.ReadCloser
	Name     string
	Fallback bool
}

type Store struct {
	backend     storage.Store
	defaultName string
	logger      *slog.Logger
}

type Option func(*Store)

func WithDefaultName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.defaultName = name
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(backend storage.Store, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		defaultName: DefaultName,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultName 返回兜底图片的文件名
func (s *Store) DefaultName() string { return s.defaultName }

// NameForContent 返回内容寻址的文件名
func NameForContent(data []byte, ext string) string {
	return core.CalculateBlobHash(data).String() + ext
}

// NameForID 返回按商品 id 命名的文件名
func NameForID(id types.ItemID, ext string) string {
	return id.String() + ext
}

// UploadExt 校验上传文件名的扩展名，并统一成 Ext
// 只接受 jpg，保证存下来的每个文件名都能被 Load 读取
func UploadExt(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return Ext, nil
	}
	return "", ErrUnsupportedImage
}

// Save 把图片写到 name 下，已存在则覆盖
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := s.backend.Put(ctx, name, data); err != nil {
		return fmt.Errorf("failed to save image %s: %w", name, err)
	}
	metrics.ImagesSaved.WithLabelValues("written").Inc()
	return nil
}

// SaveContent 按内容哈希命名并保存，已存在的相同内容直接跳过
func (s *Store) SaveContent(ctx context.Context, data []byte, ext string) (string, error) {
	name := NameForContent(data, ext)

	exists, err := s.backend.Has(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to check image %s: %w", name, err)
	}
	if exists {
		metrics.ImagesSaved.WithLabelValues("deduplicated").Inc()
		return name, nil
	}

	if err := s.Save(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Load 读取图片；缺失时返回默认图片
// 调用方负责关闭返回的 Blob
func (s *Store) Load(ctx context.Context, name string) (*Blob, error) {
	if !strings.HasSuffix(name, Ext) {
		return nil, ErrInvalidExtension
	}

	rc, err := s.backend.Get(ctx, name)
	if err == nil {
		return &Blob{ReadCloser: rc, Name: name}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidName) {
		return nil, fmt.Errorf("failed to load image %s: %w", name, err)
	}

	s.logger.WarnContext(ctx, "image not found, serving default",
		slog.String("image", name),
		slog.String("default", s.defaultName),
	)
	metrics.ImageFallbacks.Inc()

	rc, err = s.backend.Get(ctx, s.defaultName)
	if err != nil {
		return nil, fmt.Errorf("failed to load default image %s: %w", s.defaultName, err)
	}
	return &Blob{ReadCloser: rc, Name: s.defaultName, Fallback: true}, nil
}

// EnsureDefault 保证兜底图片存在
func (s *Store) EnsureDefault(ctx context.Context) error {
	exists, err := s.backend.Has(ctx, s.defaultName)
	if err != nil {
		return fmt.Errorf("failed to check default image: %w", err)
	}
	if exists {
		return nil
	}

	data, err := Placeholder()
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "writing placeholder default image", slog.String("name", s.defaultName))
	return s.Save(ctx, s.defaultName, data)
}
