package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"simplemercari/pkg/storage"

	"github.com/redis/go-redis/v9"
)

// CachedStore 是一个装饰器，它为底层的 storage.Store 添加 Redis 存在性缓存
// 只缓存 "这个文件名存在" 这一事实，不缓存图片内容
type CachedStore struct {
	backend storage.Store // 被装饰的底层存储 (如 S3)
	client  *redis.Client
	ttl     time.Duration
}

type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 过期时间
}

func NewCachedStore(backend storage.Store, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
	}, nil
}

// cacheKey 生成 Redis Key，添加前缀防止冲突
func (s *CachedStore) cacheKey(name string) string {
	return "mercari:img:" + name
}

// Has 优先查 Redis
func (s *CachedStore) Has(ctx context.Context, name string) (bool, error) {
	key := s.cacheKey(name)

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		// Redis 故障时降级为无缓存模式，直接查底层存储
		slog.WarnContext(ctx, "redis exists failed, falling back to backend", slog.Any("err", err))
	} else if val > 0 {
		return true, nil
	}

	found, err := s.backend.Has(ctx, name)
	if err != nil {
		return false, err
	}

	// 缓存回填，异步进行，不阻塞主流程
	if found {
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.client.Set(fillCtx, key, "1", s.ttl)
		}()
	}

	return found, nil
}

// Put 总是写穿到底层存储 (覆盖语义)，成功后再标记缓存
func (s *CachedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.backend.Put(ctx, name, data); err != nil {
		return err
	}

	// 这里的 Set 错误可以忽略，不影响主流程
	if err := s.client.Set(ctx, s.cacheKey(name), "1", s.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "redis set failed", slog.String("name", name), slog.Any("err", err))
	}
	return nil
}

// Get 透传 - 不缓存 Blob 数据
func (s *CachedStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, name)
}

// Close 关闭 Redis 连接，并在底层存储可关闭时一并关闭
func (s *CachedStore) Close() error {
	err := s.client.Close()
	if c, ok := s.backend.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
