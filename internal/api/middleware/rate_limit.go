package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shift-kanri/pkg/redis"
	"shift-kanri/pkg/response"
)

// RateLimit Redis 固定ウィンドウ方式の速度制限ミドルウェア
// limit: ウィンドウ内に許容する最大リクエスト数
// window: ウィンドウ長
// rdb が nil または障害時は制限なしで通す
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "リクエストが多すぎます。しばらくしてから再試行してください")
			c.Abort()
			return
		}

		c.Next()
	}
}
