package bolt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"simplemercari/pkg/storage"

	bolt "go.etcd.io/bbolt"
)

const imageBucket = "images"

// Adapter 把所有图片放进单个 bbolt 文件，实现 storage.Store 接口
type Adapter struct {
	db *bolt.DB
}

// NewAdapter 打开 (或创建) bbolt 数据库文件
func NewAdapter(dbPath string) (*Adapter, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(imageBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Adapter{db: db}, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Put(ctx context.Context, name string, data []byte) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	err := a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(imageBucket)).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("bolt put %s: %w", name, err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	var data []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(imageBucket)).Get([]byte(name))
		if v == nil {
			return storage.ErrNotFound
		}
		// v 只在事务内有效，必须拷贝
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *Adapter) Has(ctx context.Context, name string) (bool, error) {
	if err := storage.ValidateName(name); err != nil {
		return false, err
	}
	var found bool
	err := a.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(imageBucket)).Get([]byte(name)) != nil
		return nil
	})
	return found, err
}
