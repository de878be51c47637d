package middlewares

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/controller"
	"github.com/bangcorrupt/freesound/dao/redis"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/jwt"
)

// tokenCache keeps recently validated tokens in memory to take load off
// Redis.
type tokenCache struct {
	sync.RWMutex
	cache map[int64]*cacheEntry
}

type cacheEntry struct {
	token      string
	expireTime time.Time
}

var (
	localCache = &tokenCache{
		cache: make(map[int64]*cacheEntry),
	}
	cacheExpireDuration = 5 * time.Minute
)

func init() {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cleanExpiredCache()
		}
	}()
}

func cleanExpiredCache() {
	localCache.Lock()
	defer localCache.Unlock()

	now := time.Now()
	for userID, entry := range localCache.cache {
		if now.After(entry.expireTime) {
			delete(localCache.cache, userID)
		}
	}
}

func getTokenFromCache(userID int64) (string, bool) {
	localCache.RLock()
	defer localCache.RUnlock()

	entry, exists := localCache.cache[userID]
	if !exists || time.Now().After(entry.expireTime) {
		return "", false
	}
	return entry.token, true
}

func setTokenToCache(userID int64, token string) {
	localCache.Lock()
	defer localCache.Unlock()

	localCache.cache[userID] = &cacheEntry{
		token:      token,
		expireTime: time.Now().Add(cacheExpireDuration),
	}
}

// JWTAuthMiddleware authenticates requests with a Bearer access token. The
// stored session token is checked against Redis for single-session
// enforcement; when Redis is unreachable the middleware degrades to plain
// JWT validation so an outage does not lock everyone out.
func JWTAuthMiddleware() func(c *gin.Context) {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			controller.ResponseError(c, errorx.ErrNeedLogin)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			controller.ResponseError(c, errorx.ErrInvalidToken)
			c.Abort()
			return
		}

		mc, err := jwt.ParseToken(parts[1])
		if err != nil {
			controller.ResponseError(c, errorx.ErrInvalidToken)
			c.Abort()
			return
		}

		if !validateSessionToken(c, mc.UserID, parts[1]) {
			return
		}

		c.Set(controller.CtxUserIDKey, mc.UserID)
		c.Next()
	}
}

// validateSessionToken checks the presented token against the active
// session, preferring the local cache. Returns false when the request was
// aborted.
func validateSessionToken(c *gin.Context, userID int64, token string) bool {
	cachedToken, exists := getTokenFromCache(userID)
	if exists && cachedToken == token {
		return true
	}

	redisToken, err := redis.GetUserAccessToken(userID)
	if err != nil {
		// Redis miss or outage: the JWT itself already validated.
		zap.L().Warn("session token lookup failed, accepting bare JWT",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return true
	}

	if token != redisToken {
		controller.ResponseErrorWithMsg(c, errorx.CodeInvalidToken,
			"account signed in from another session")
		c.Abort()
		return false
	}

	setTokenToCache(userID, token)
	return true
}
