package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"course-ledger/pkg/response"
)

// WindowLimiter 分布式滑动窗口限流（由 pkg/redis.Client 实现）
type WindowLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// localLimiter 进程内令牌桶，按 key 各自独立
type localLimiter struct {
	mu     sync.Mutex
	every  rate.Limit
	burst  int
	limits map[string]*rate.Limiter
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	return &localLimiter{
		every:  rate.Every(window / time.Duration(limit)),
		burst:  limit,
		limits: make(map[string]*rate.Limiter),
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limits[key]
	if !ok {
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limits[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// RateLimit 速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 窗口时长
// remote 为 nil 或出错时使用进程内令牌桶
func RateLimit(remote WindowLimiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())

		var allowed bool
		if remote != nil {
			ok, err := remote.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				logger.Warn("Redis 限流失败，改用本地限流", zap.Error(err))
				allowed = local.allow(key)
			} else {
				allowed = ok
			}
		} else {
			allowed = local.allow(key)
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
