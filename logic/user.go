package logic

import (
	"errors"

	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/dao/redis"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/jwt"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
)

// SignUp registers a new user.
func SignUp(p *models.ParamSignUp) error {
	if err := mysql.CheckUserExist(p.Username); err != nil {
		if errors.Is(err, mysql.ErrorUserExist) {
			return errorx.ErrUserExist
		}
		zap.L().Error("mysql.CheckUserExist failed",
			zap.String("username", p.Username),
			zap.Error(err))
		return errorx.ErrServerBusy
	}

	u := &models.User{
		UserID:   snowflake.GenID(),
		Username: p.Username,
		Email:    p.Email,
		Password: p.Password,
	}
	if err := mysql.InsertUser(u); err != nil {
		zap.L().Error("mysql.InsertUser failed",
			zap.String("username", p.Username),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// Login verifies credentials and issues an access/refresh token pair. The
// pair is stored in Redis for single-session enforcement; when Redis is
// down the login still succeeds and the auth middleware degrades to plain
// JWT validation.
func Login(p *models.ParamLogin) (aToken, rToken string, err error) {
	user := &models.User{
		Username: p.Username,
		Password: p.Password,
	}

	if err = mysql.CheckLogin(user); err != nil {
		switch {
		case errors.Is(err, mysql.ErrorUserNotExist):
			return "", "", errorx.ErrUserNotExist
		case errors.Is(err, mysql.ErrorInvalidPassword):
			return "", "", errorx.ErrInvalidPassword
		default:
			zap.L().Error("mysql.CheckLogin failed",
				zap.String("username", p.Username),
				zap.Error(err))
			return "", "", errorx.ErrServerBusy
		}
	}

	aToken, rToken, err = jwt.GenToken(user.UserID, user.Username)
	if err != nil {
		zap.L().Error("jwt.GenToken failed",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}

	err = redis.SetUserTokens(user.UserID, aToken, rToken,
		jwt.AccessTokenExpireDuration, jwt.RefreshTokenExpireDuration)
	if err != nil {
		zap.L().Warn("storing session tokens failed, single-session enforcement disabled",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
	}

	return aToken, rToken, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func RefreshToken(rToken string) (string, string, error) {
	userID, err := jwt.ParseRefreshToken(rToken)
	if err != nil {
		return "", "", errorx.ErrInvalidToken
	}

	user, err := mysql.GetUserByID(userID)
	if err != nil {
		zap.L().Error("mysql.GetUserByID failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}
	if user == nil {
		return "", "", errorx.ErrUserNotExist
	}

	aToken, newRToken, err := jwt.GenToken(user.UserID, user.Username)
	if err != nil {
		zap.L().Error("jwt.GenToken failed",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
		return "", "", errorx.ErrServerBusy
	}

	err = redis.SetUserTokens(user.UserID, aToken, newRToken,
		jwt.AccessTokenExpireDuration, jwt.RefreshTokenExpireDuration)
	if err != nil {
		zap.L().Warn("storing session tokens failed, single-session enforcement disabled",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
	}

	return aToken, newRToken, nil
}
