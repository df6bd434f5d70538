package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QueryCache 查询结果缓存，Redis 实现见 pkg/redis
// 键中包含快照标识，数据替换后旧缓存自然失效
type QueryCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// cachedQuery 先查缓存，未命中时计算并回写；缓存故障只记录日志
func cachedQuery[T any](ctx context.Context, cache QueryCache, ttl time.Duration, logger *zap.Logger, key string, compute func() (*T, error)) (*T, error) {
	if cache == nil {
		return compute()
	}

	var hit T
	ok, err := cache.GetJSON(ctx, key, &hit)
	if err != nil {
		logger.Warn("读取查询缓存失败", zap.String("key", key), zap.Error(err))
	} else if ok {
		return &hit, nil
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, result, ttl); err != nil {
		logger.Warn("写入查询缓存失败", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
