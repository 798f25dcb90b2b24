package pebble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"simplemercari/pkg/storage"

	"github.com/cockroachdb/pebble"
)

const imagePrefix = "image:"

// Adapter 使用 Pebble KV 存储图片，实现 storage.Store 接口
type Adapter struct {
	db *pebble.DB
}

// NewAdapter 打开 (或创建) Pebble 数据目录
func NewAdapter(dir string) (*Adapter, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}
	return &Adapter{db: db}, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) imageKey(name string) ([]byte, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	return []byte(imagePrefix + name), nil
}

func (a *Adapter) Put(ctx context.Context, name string, data []byte) error {
	key, err := a.imageKey(name)
	if err != nil {
		return err
	}
	if err := a.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", name, err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := a.imageKey(name)
	if err != nil {
		return nil, err
	}

	value, closer, err := a.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %s: %w", name, err)
	}
	defer closer.Close()

	// value 在 closer.Close() 之后失效
	data := make([]byte, len(value))
	copy(data, value)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *Adapter) Has(ctx context.Context, name string) (bool, error) {
	key, err := a.imageKey(name)
	if err != nil {
		return false, err
	}

	_, closer, err := a.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}
