package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

var ErrorUserNotLogin = errors.New("user not logged in")

// GetCurrentUser returns the ID of the authenticated user from the gin
// context.
func GetCurrentUser(c *gin.Context) (userID int64, err error) {
	uid, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, ErrorUserNotLogin
	}
	userID, ok = uid.(int64)
	if !ok {
		return 0, ErrorUserNotLogin
	}
	return userID, nil
}

func stringToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// getPageInfo reads page/size query parameters with sane defaults and an
// upper bound on the page size.
func getPageInfo(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}

	size, _ = strconv.Atoi(c.Query("size"))
	if size <= 0 || size > 100 {
		size = 0 // logic layer applies the configured default
	}
	return page, size
}
