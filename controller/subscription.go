package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// SubscribeHandler subscribes the requester to a thread's replies.
// Repeated subscriptions are deduplicated.
func SubscribeHandler(c *gin.Context) {
	userID, err := GetCurrentUser(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	tid, err := stringToInt64(c.Param("tid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	if err := logic.Subscribe(userID, c.Param("slug"), tid); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// UnsubscribeHandler removes the requester's subscription to a thread.
func UnsubscribeHandler(c *gin.Context) {
	userID, err := GetCurrentUser(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	tid, err := stringToInt64(c.Param("tid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	if err := logic.Unsubscribe(userID, c.Param("slug"), tid); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}
