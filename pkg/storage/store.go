package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

// Store defines the interface for a blob storage backend.
// Implementations can be local disk, cloud storage, or embedded KV stores.
// Blobs are addressed by a flat file name (e.g. "<sha256>.jpg").
type Store interface {
	// Put 持久化一个 Blob，已存在时覆盖
	Put(ctx context.Context, name string, data []byte) error

	// Get 根据名字读取原始数据
	// 返回 io.ReadCloser 而不是 []byte，方便直接流式写回 HTTP 响应
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, name string) (bool, error)
}

// ValidateName 拒绝可能逃出存储根目录的名字
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}
