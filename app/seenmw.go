// app/seenmw.go
package app

import (
	"keycabinet/db"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("operatorID")
		if !ok {
			c.Next()
			return
		}
		oid, _ := v.(string)
		if oid == "" {
			c.Next()
			return
		}

		key := "kc:lastseen:" + oid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchOperatorSeen(c, oid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
