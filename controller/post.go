package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// handleBindError turns a binding failure into a response: validation
// errors are translated per field, anything else is a generic parameter
// error.
func handleBindError(c *gin.Context, err error) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}
	ResponseErrorWithMsg(c, errorx.CodeInvalidParam, removeTopStruct(errs.Translate(trans)))
}

// PostLocatorHandler resolves a post permalink to its thread and page.
func PostLocatorHandler(c *gin.Context) {
	pid, err := stringToInt64(c.Param("pid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	data, err := logic.GetPostLocator(pid)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, data)
}

// EditPostHandler replaces the body of the requester's own post.
func EditPostHandler(c *gin.Context) {
	userID, err := GetCurrentUser(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	pid, err := stringToInt64(c.Param("pid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	p := new(models.ParamEditPost)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	post, err := logic.EditPost(userID, pid, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, post)
}

// DeletePostHandler removes the requester's own post.
func DeletePostHandler(c *gin.Context) {
	userID, err := GetCurrentUser(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	pid, err := stringToInt64(c.Param("pid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	if err := logic.DeletePost(userID, pid); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// ModeratePostHandler sets the moderation state of a post.
func ModeratePostHandler(c *gin.Context) {
	if _, err := GetCurrentUser(c); err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	pid, err := stringToInt64(c.Param("pid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	p := new(models.ParamModeratePost)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	if err := logic.ModeratePost(pid, p); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}
