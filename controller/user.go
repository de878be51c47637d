package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// SignUpHandler registers a new user.
func SignUpHandler(c *gin.Context) {
	p := new(models.ParamSignUp)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	if err := logic.SignUp(p); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// LoginHandler verifies credentials and returns an access/refresh token
// pair.
func LoginHandler(c *gin.Context) {
	p := new(models.ParamLogin)
	if err := c.ShouldBindJSON(p); err != nil {
		handleBindError(c, err)
		return
	}

	aToken, rToken, err := logic.Login(p)
	if err != nil {
		HandleError(c, err)
		return
	}

	ResponseSuccess(c, map[string]string{
		"access_token":  aToken,
		"refresh_token": rToken,
	})
}

// RefreshTokenHandler exchanges a refresh token for a new token pair.
func RefreshTokenHandler(c *gin.Context) {
	rt := c.Query("refresh_token")
	if rt == "" {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	aToken, rToken, err := logic.RefreshToken(rt)
	if err != nil {
		HandleError(c, err)
		return
	}

	ResponseSuccess(c, map[string]string{
		"access_token":  aToken,
		"refresh_token": rToken,
	})
}
