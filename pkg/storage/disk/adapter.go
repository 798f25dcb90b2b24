package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"simplemercari/pkg/storage"
)

// Adapter 实现了 storage.Store 接口
// 所有图片平铺在 rootPath 下 (例如 images/<sha256>.jpg, images/default.jpg)
type Adapter struct {
	rootPath string
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// Root 返回存储根目录
func (s *Adapter) Root() string { return s.rootPath }

func (s *Adapter) layout(name string) (string, error) {
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.rootPath, name), nil
}

func (s *Adapter) Put(ctx context.Context, name string, data []byte) error {
	targetPath, err := s.layout(name)
	if err != nil {
		return err
	}

	// 原子写入 (Atomic Write)
	// 先写到同目录下的临时文件，然后 Rename 覆盖。
	// 这样读者要么看到旧文件，要么看到完整的新文件。
	tempFile, err := os.CreateTemp(s.rootPath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tempFile.Close(); err != nil { // 必须先关闭才能 Rename
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

func (s *Adapter) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	targetPath, err := s.layout(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(targetPath)
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, name string) (bool, error) {
	targetPath, err := s.layout(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(targetPath)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
