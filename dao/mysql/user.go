package mysql

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bangcorrupt/freesound/models"
)

// Sentinel errors the logic layer matches with errors.Is.
var (
	ErrorUserExist       = errors.New("user already exists")
	ErrorUserNotExist    = errors.New("user does not exist")
	ErrorInvalidPassword = errors.New("invalid password")
)

// CheckUserExist reports ErrorUserExist when the username is taken.
func CheckUserExist(username string) error {
	var count int64
	err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrorUserExist
	}
	return nil
}

func encryptPassword(oPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(oPassword), bcrypt.DefaultCost)
	return string(hash), err
}

// InsertUser stores a new user with a bcrypt password hash.
func InsertUser(user *models.User) (err error) {
	user.Password, err = encryptPassword(user.Password)
	if err != nil {
		return fmt.Errorf("encrypt password failed: %w", err)
	}

	if err = db.Create(user).Error; err != nil {
		return fmt.Errorf("insert user failed: %w", err)
	}
	return nil
}

// CheckLogin verifies the credentials in user (Username and plaintext
// Password) and fills in the stored row on success.
func CheckLogin(user *models.User) error {
	oPassword := user.Password

	err := db.Where("username = ?", user.Username).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrorUserNotExist
		}
		return fmt.Errorf("login query failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oPassword)); err != nil {
		return ErrorInvalidPassword
	}
	return nil
}

// GetUserByID looks a user up by primary key. Returns nil when it does not
// exist.
func GetUserByID(uid int64) (*models.User, error) {
	user := new(models.User)
	err := db.Where("user_id = ?", uid).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return user, nil
}
