package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
	"github.com/cliffordobure/daycare-sub000/pkg/redis"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// name: 限流桶名称，同名路由共享计数
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 时降级放行（与 Token 黑名单策略一致）
func RateLimit(rdb *redis.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", name, c.ClientIP())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.AppError(c, apperrors.ErrTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
