package models

import (
	"errors"

	"gorm.io/gorm"
)

// GORM lifecycle hooks keeping the denormalized counters on Forum and
// Thread in sync with the underlying post rows. Every hook runs inside the
// transaction of the statement that fired it, so a failed recompute rolls
// the whole write back. Aggregate columns are written with UpdateColumns,
// which bypasses hooks and keeps the cascade from re-entering itself.

// BeforeCreate applies the default moderation state, mirroring the column
// default so the in-memory object matches what was stored.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ModerationState == "" {
		p.ModerationState = ModerationOK
	}
	return nil
}

// AfterSave runs after both create and update. Recomputing unconditionally
// keeps moderation transitions (NM -> OK and back) and plain edits on one
// code path; an unmoderated insert recomputes to the same values.
func (p *Post) AfterSave(tx *gorm.DB) error {
	return refreshPostAggregates(tx, p.ThreadID)
}

// AfterDelete reassigns last_post and counts, and removes the thread
// entirely when its last remaining post (of any moderation state) is gone.
func (p *Post) AfterDelete(tx *gorm.DB) error {
	var remaining int64
	err := tx.Model(&Post{}).Where("thread_id = ?", p.ThreadID).Count(&remaining).Error
	if err != nil {
		return err
	}

	if remaining == 0 {
		thread := new(Thread)
		err = tx.Where("thread_id = ?", p.ThreadID).First(thread).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Already gone, nothing to cascade.
				return nil
			}
			return err
		}
		return tx.Delete(thread).Error
	}

	return refreshPostAggregates(tx, p.ThreadID)
}

func (t *Thread) AfterCreate(tx *gorm.DB) error {
	return refreshForumAggregates(tx, t.ForumID)
}

// AfterDelete cascades to the thread's posts and subscriptions. The post
// batch delete fires Post.AfterDelete once with a zero-value model, whose
// thread_id 0 matches nothing; the forum aggregates are recomputed once
// afterwards.
func (t *Thread) AfterDelete(tx *gorm.DB) error {
	if err := tx.Where("thread_id = ?", t.ID).Delete(&Post{}).Error; err != nil {
		return err
	}
	if err := tx.Where("thread_id = ?", t.ID).Delete(&Subscription{}).Error; err != nil {
		return err
	}
	return refreshForumAggregates(tx, t.ForumID)
}

// refreshPostAggregates recomputes the aggregates of the thread holding the
// given posts and of its forum.
func refreshPostAggregates(tx *gorm.DB, threadID int64) error {
	thread := new(Thread)
	err := tx.Where("thread_id = ?", threadID).First(thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := refreshThreadAggregates(tx, thread.ID); err != nil {
		return err
	}
	return refreshForumAggregates(tx, thread.ForumID)
}

// refreshThreadAggregates recounts the thread's moderated posts and points
// last_post_id at the most recent one, or NULL when none remain.
func refreshThreadAggregates(tx *gorm.DB, threadID int64) error {
	var numPosts int64
	err := tx.Model(&Post{}).
		Where("thread_id = ? AND moderation_state = ?", threadID, ModerationOK).
		Count(&numPosts).Error
	if err != nil {
		return err
	}

	var lastPostID *int64
	last := new(Post)
	err = tx.Where("thread_id = ? AND moderation_state = ?", threadID, ModerationOK).
		Order("created DESC, post_id DESC").
		First(last).Error
	switch {
	case err == nil:
		lastPostID = &last.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return tx.Model(&Thread{}).
		Where("thread_id = ?", threadID).
		UpdateColumns(map[string]interface{}{
			"num_posts":    numPosts,
			"last_post_id": lastPostID,
		}).Error
}

// refreshForumAggregates recounts threads and moderated posts across the
// whole forum. The forum's last_post may belong to a different thread than
// the one that triggered the recompute.
func refreshForumAggregates(tx *gorm.DB, forumID int64) error {
	var numThreads int64
	err := tx.Model(&Thread{}).Where("forum_id = ?", forumID).Count(&numThreads).Error
	if err != nil {
		return err
	}

	var numPosts int64
	err = tx.Model(&Post{}).
		Joins("JOIN thread ON thread.thread_id = post.thread_id").
		Where("thread.forum_id = ? AND post.moderation_state = ?", forumID, ModerationOK).
		Count(&numPosts).Error
	if err != nil {
		return err
	}

	var lastPostID *int64
	last := new(Post)
	err = tx.Model(&Post{}).
		Select("post.*").
		Joins("JOIN thread ON thread.thread_id = post.thread_id").
		Where("thread.forum_id = ? AND post.moderation_state = ?", forumID, ModerationOK).
		Order("post.created DESC, post.post_id DESC").
		First(last).Error
	switch {
	case err == nil:
		lastPostID = &last.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return tx.Model(&Forum{}).
		Where("forum_id = ?", forumID).
		UpdateColumns(map[string]interface{}{
			"num_threads":  numThreads,
			"num_posts":    numPosts,
			"last_post_id": lastPostID,
		}).Error
}
