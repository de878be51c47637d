package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// CreateThreadHandler opens a new thread with its first post.
func CreateThreadHandler(c *gin.Context) {
	userID, err := GetCurrentUser(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	p := new(models.ParamNewThread)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	thread, err := logic.CreateThread(userID, c.Param("slug"), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, thread)
}

// ThreadDetailHandler returns a thread and one page of its moderated
// posts. Threads without moderated posts are 404.
func ThreadDetailHandler(c *gin.Context) {
	tid, err := stringToInt64(c.Param("tid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}
	page, size := getPageInfo(c)

	data, err := logic.GetThreadDetail(c.Param("slug"), tid, page, size)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, data)
}

// ReplyHandler adds a post to a thread.
func ReplyHandler(c *gin.Context) {
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

	p := new(models.ParamReply)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	post, err := logic.CreateReply(userID, c.Param("slug"), tid, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, post)
}
