package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// CtxUserIDKey is the gin context key the auth middleware stores the user
// ID under. Defined here rather than in middlewares to avoid an import
// cycle.
const CtxUserIDKey = "userID"

// ResponseData is the uniform response envelope.
type ResponseData struct {
	Code int         `json:"code"`
	Msg  interface{} `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// httpStatus maps business codes onto HTTP statuses where clients care
// about them; everything else rides on 200.
func httpStatus(code int) int {
	switch code {
	case errorx.CodeNotFound:
		return http.StatusNotFound
	case errorx.CodeNeedLogin, errorx.CodeInvalidToken:
		return http.StatusUnauthorized
	case errorx.CodeForbidden:
		return http.StatusForbidden
	case errorx.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusOK
	}
}

// ResponseError writes a business error.
func ResponseError(c *gin.Context, cerr *errorx.CodeError) {
	c.JSON(httpStatus(cerr.Code), &ResponseData{
		Code: cerr.Code,
		Msg:  cerr.Msg,
	})
}

// ResponseErrorWithMsg writes an error with a custom message payload,
// typically translated validation errors.
func ResponseErrorWithMsg(c *gin.Context, code int, msg interface{}) {
	c.JSON(httpStatus(code), &ResponseData{
		Code: code,
		Msg:  msg,
	})
}

// ResponseSuccess writes a success envelope.
func ResponseSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &ResponseData{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// HandleError dispatches an error from the logic layer: business errors
// carry their own code, anything else is logged and reported as server
// busy.
func HandleError(c *gin.Context, err error) {
	var cerr *errorx.CodeError
	if errors.As(err, &cerr) {
		ResponseError(c, cerr)
		return
	}
	zap.L().Error("unexpected error", zap.Error(err))
	ResponseError(c, errorx.ErrServerBusy)
}
