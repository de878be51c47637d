package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"

	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// RateLimitMiddleware applies a token-bucket limit across all requests.
// fillInterval controls the refill rate, capacity the allowed burst.
func RateLimitMiddleware(fillInterval time.Duration, capacity int64) gin.HandlerFunc {
	bucket := ratelimit.NewBucket(fillInterval, capacity)

	return func(c *gin.Context) {
		if bucket.TakeAvailable(1) < 1 {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code": errorx.CodeRateLimitExceeded,
				"msg":  errorx.ErrRateLimitExceeded.Msg,
				"data": nil,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
