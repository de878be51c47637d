package logic

import (
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
	"github.com/bangcorrupt/freesound/settings"
)

// CreateThread opens a new thread in a forum together with its first post,
// optionally subscribing the author to replies.
func CreateThread(userID int64, slug string, p *models.ParamNewThread) (*models.Thread, error) {
	forum, err := mysql.GetForumBySlug(slug)
	if err != nil {
		zap.L().Error("mysql.GetForumBySlug failed",
			zap.String("slug", slug),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if forum == nil {
		return nil, errorx.ErrNotFound
	}

	if err := checkPostThrottle(userID); err != nil {
		return nil, err
	}

	thread := &models.Thread{
		ID:       snowflake.GenID(),
		ForumID:  forum.ID,
		AuthorID: userID,
		Title:    p.Title,
		Status:   models.ThreadStatusRegular,
	}
	post := &models.Post{
		ID:       snowflake.GenID(),
		AuthorID: userID,
		Body:     p.Body,
	}

	if err := mysql.CreateThreadWithFirstPost(thread, post); err != nil {
		zap.L().Error("mysql.CreateThreadWithFirstPost failed",
			zap.Int64("thread_id", thread.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if p.Subscribe {
		if err := subscribe(userID, thread.ID); err != nil {
			// The thread exists, a failed subscription should not undo it.
			zap.L().Error("subscribe after thread creation failed",
				zap.Int64("thread_id", thread.ID),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	return thread, nil
}

// GetThreadDetail returns a thread and one page of its moderated posts. A
// thread with no moderated posts is invisible, exactly as if it did not
// exist.
func GetThreadDetail(slug string, tid int64, page, size int) (*models.ThreadDetail, error) {
	thread, err := getThreadInForum(slug, tid)
	if err != nil {
		return nil, err
	}

	total, err := mysql.CountModeratedPostsByThreadID(thread.ID)
	if err != nil {
		zap.L().Error("mysql.CountModeratedPostsByThreadID failed",
			zap.Int64("thread_id", thread.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if total == 0 {
		return nil, errorx.ErrNotFound
	}

	if size <= 0 {
		size = settings.Conf.Forum.PostsPerPage
	}
	if page <= 0 {
		page = 1
	}

	posts, err := mysql.GetModeratedPostsByThreadID(thread.ID, page, size)
	if err != nil {
		zap.L().Error("mysql.GetModeratedPostsByThreadID failed",
			zap.Int64("thread_id", thread.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &models.ThreadDetail{
		Thread:     thread,
		Posts:      posts,
		TotalPosts: total,
		Page:       page,
		Size:       size,
	}, nil
}

// getThreadInForum resolves a thread by ID and checks it belongs to the
// forum identified by slug.
func getThreadInForum(slug string, tid int64) (*models.Thread, error) {
	forum, err := mysql.GetForumBySlug(slug)
	if err != nil {
		zap.L().Error("mysql.GetForumBySlug failed",
			zap.String("slug", slug),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if forum == nil {
		return nil, errorx.ErrNotFound
	}

	thread, err := mysql.GetThreadByID(tid)
	if err != nil {
		zap.L().Error("mysql.GetThreadByID failed",
			zap.Int64("thread_id", tid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if thread == nil || thread.ForumID != forum.ID {
		return nil, errorx.ErrNotFound
	}
	return thread, nil
}
