package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bangcorrupt/freesound/models"
)

// CreateThreadWithFirstPost creates a thread and its opening post in one
// transaction and records the post as the thread's first_post. The post
// hooks fire inside the same transaction, so the forum and thread
// aggregates are already consistent when this returns.
func CreateThreadWithFirstPost(thread *models.Thread, post *models.Post) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		post.ThreadID = thread.ID
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thread{}).
			Where("thread_id = ?", thread.ID).
			UpdateColumn("first_post_id", post.ID).Error
	})
	if err != nil {
		return fmt.Errorf("insert thread failed: %w", err)
	}
	thread.FirstPostID = &post.ID
	return nil
}

// GetThreadByID looks a thread up by primary key. Returns nil when it does
// not exist.
func GetThreadByID(tid int64) (*models.Thread, error) {
	thread := new(models.Thread)
	err := db.Where("thread_id = ?", tid).First(thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query thread by id failed: %w", err)
	}
	return thread, nil
}

// GetThreadsByForumID returns one page of a forum's threads, sticky threads
// first, then by last-post recency. NULL last_post_id sorts last under DESC
// on both MySQL and sqlite.
func GetThreadsByForumID(forumID int64, page, size int) (threads []*models.Thread, err error) {
	threads = make([]*models.Thread, 0, size)
	err = db.Where("forum_id = ?", forumID).
		Order("status ASC, last_post_id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&threads).Error
	if err != nil {
		return nil, fmt.Errorf("query threads by forum failed: %w", err)
	}
	return threads, nil
}

// CountThreadsByForumID counts all threads of a forum.
func CountThreadsByForumID(forumID int64) (count int64, err error) {
	err = db.Model(&models.Thread{}).Where("forum_id = ?", forumID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count threads by forum failed: %w", err)
	}
	return count, nil
}

// DeleteThread removes a loaded thread. The thread hooks cascade to its
// posts and subscriptions and refresh the forum aggregates.
func DeleteThread(thread *models.Thread) error {
	if err := db.Delete(thread).Error; err != nil {
		return fmt.Errorf("delete thread failed: %w", err)
	}
	return nil
}
