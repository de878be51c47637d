package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bangcorrupt/freesound/models"
)

// CreatePost inserts a post. The post hooks update the thread and forum
// aggregates inside the insert transaction.
func CreatePost(post *models.Post) error {
	if err := db.Create(post).Error; err != nil {
		return fmt.Errorf("insert post failed: %w", err)
	}
	return nil
}

// GetPostByID looks a post up by primary key. Returns nil when it does not
// exist.
func GetPostByID(pid int64) (*models.Post, error) {
	post := new(models.Post)
	err := db.Where("post_id = ?", pid).First(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return post, nil
}

// GetPostByIDWithPreload also loads the post's thread and author in two
// extra queries instead of one per association.
func GetPostByIDWithPreload(pid int64) (*models.Post, error) {
	post := new(models.Post)
	err := db.Preload("Thread").
		Preload("Author").
		Where("post_id = ?", pid).
		First(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id with preload failed: %w", err)
	}
	return post, nil
}

// GetModeratedPostsByThreadID returns one page of a thread's moderated
// posts in chronological order, with authors preloaded.
func GetModeratedPostsByThreadID(threadID int64, page, size int) (posts []*models.Post, err error) {
	posts = make([]*models.Post, 0, size)
	err = db.Preload("Author").
		Where("thread_id = ? AND moderation_state = ?", threadID, models.ModerationOK).
		Order("created ASC, post_id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("query posts by thread failed: %w", err)
	}
	return posts, nil
}

// CountModeratedPostsByThreadID counts a thread's moderated posts.
func CountModeratedPostsByThreadID(threadID int64) (count int64, err error) {
	err = db.Model(&models.Post{}).
		Where("thread_id = ? AND moderation_state = ?", threadID, models.ModerationOK).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count posts by thread failed: %w", err)
	}
	return count, nil
}

// GetPostPosition returns the zero-based position of a post among the
// moderated posts of its thread, used to compute the page a permalink
// lands on.
func GetPostPosition(post *models.Post) (int64, error) {
	var before int64
	err := db.Model(&models.Post{}).
		Where("thread_id = ? AND moderation_state = ?", post.ThreadID, models.ModerationOK).
		Where("created < ? OR (created = ? AND post_id < ?)", post.Created, post.Created, post.ID).
		Count(&before).Error
	if err != nil {
		return 0, fmt.Errorf("count preceding posts failed: %w", err)
	}
	return before, nil
}

// GetLatestPostByAuthor returns the author's most recent post across all
// threads, or nil when they have never posted. Used for the posting
// throttle.
func GetLatestPostByAuthor(authorID int64) (*models.Post, error) {
	post := new(models.Post)
	err := db.Where("author_id = ?", authorID).
		Order("created DESC, post_id DESC").
		First(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest post by author failed: %w", err)
	}
	return post, nil
}

// SavePost persists every field of a loaded post. Runs the save hooks, so
// moderation transitions recompute the aggregates.
func SavePost(post *models.Post) error {
	if err := db.Save(post).Error; err != nil {
		return fmt.Errorf("save post failed: %w", err)
	}
	return nil
}

// DeletePost removes a loaded post. The delete hooks reassign last_post,
// fix the counters and drop the thread when this was its final post.
func DeletePost(post *models.Post) error {
	if err := db.Delete(post).Error; err != nil {
		return fmt.Errorf("delete post failed: %w", err)
	}
	return nil
}
