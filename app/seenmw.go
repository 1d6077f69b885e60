// app/seenmw.go
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type ProfileToucher interface {
	TouchProfileSeen(ctx context.Context, userID string) error
}

// TouchLastSeen updates profiles.last_seen_at at most once per throttle
// window per user, using a redis SETNX as the gate.
func TouchLastSeen(profiles ProfileToucher, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserID)
		if !ok {
			c.Next()
			return
		}
		uid, _ := v.(string)
		if uid == "" {
			c.Next()
			return
		}

		key := "user:lastseen:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = profiles.TouchProfileSeen(c, uid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
