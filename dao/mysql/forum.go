package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bangcorrupt/freesound/models"
)

// CreateForum inserts a new forum.
func CreateForum(forum *models.Forum) error {
	if err := db.Create(forum).Error; err != nil {
		return fmt.Errorf("insert forum failed: %w", err)
	}
	return nil
}

// GetForumList returns all forums with their aggregates.
func GetForumList() (forums []*models.Forum, err error) {
	forums = make([]*models.Forum, 0)
	err = db.Order("name ASC").Find(&forums).Error
	if err != nil {
		return nil, fmt.Errorf("query forum list failed: %w", err)
	}
	return forums, nil
}

// GetForumBySlug looks a forum up by its slug. Returns nil when it does not
// exist; the caller decides whether that is an error.
func GetForumBySlug(slug string) (*models.Forum, error) {
	forum := new(models.Forum)
	err := db.Where("name_slug = ?", slug).First(forum).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query forum by slug failed: %w", err)
	}
	return forum, nil
}

// GetForumByID looks a forum up by primary key.
func GetForumByID(id int64) (*models.Forum, error) {
	forum := new(models.Forum)
	err := db.Where("forum_id = ?", id).First(forum).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query forum by id failed: %w", err)
	}
	return forum, nil
}
