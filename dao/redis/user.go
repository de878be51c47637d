package redis

import (
	"context"
	"fmt"
	"time"
)

// SetUserTokens records the active token pair for single-session login.
// Issuing a new pair invalidates any previous session.
func SetUserTokens(userID int64, aToken, rToken string, aExpire, rExpire time.Duration) error {
	if rdb == nil {
		return ErrNotAvailable
	}
	ctx := context.Background()
	pipe := rdb.Pipeline()
	pipe.Set(ctx, getRedisKey(fmt.Sprintf("%s%d", KeyUserAccessToken, userID)), aToken, aExpire)
	pipe.Set(ctx, getRedisKey(fmt.Sprintf("%s%d", KeyUserRefreshToken, userID)), rToken, rExpire)
	_, err := pipe.Exec(ctx)
	return err
}

// GetUserAccessToken returns the stored access token for a user.
func GetUserAccessToken(userID int64) (string, error) {
	if rdb == nil {
		return "", ErrNotAvailable
	}
	return rdb.Get(context.Background(), getRedisKey(fmt.Sprintf("%s%d", KeyUserAccessToken, userID))).Result()
}
