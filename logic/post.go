package logic

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
	"github.com/bangcorrupt/freesound/settings"
)

// checkPostThrottle rejects a post when the author's previous post is more
// recent than the configured minimum interval. A zero interval disables the
// throttle.
func checkPostThrottle(userID int64) error {
	minTime := settings.Conf.Forum.LastPostMinimumTime
	if minTime <= 0 {
		return nil
	}

	last, err := mysql.GetLatestPostByAuthor(userID)
	if err != nil {
		zap.L().Error("mysql.GetLatestPostByAuthor failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	if last != nil && time.Since(last.Created) < minTime {
		return errorx.ErrPostTooSoon
	}
	return nil
}

// CreateReply adds a post to a thread. An optional quoted post is rendered
// into the body; subscribers of the thread are notified, except the author.
func CreateReply(userID int64, slug string, tid int64, p *models.ParamReply) (*models.Post, error) {
	thread, err := getThreadInForum(slug, tid)
	if err != nil {
		return nil, err
	}
	if thread.Status == models.ThreadStatusClosed {
		return nil, errorx.ErrThreadClosed
	}

	if err := checkPostThrottle(userID); err != nil {
		return nil, err
	}

	body := p.Body
	if p.QuotePostID != 0 {
		quoted, err := mysql.GetPostByIDWithPreload(p.QuotePostID)
		if err != nil {
			zap.L().Error("mysql.GetPostByIDWithPreload failed",
				zap.Int64("post_id", p.QuotePostID),
				zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		if quoted == nil || quoted.ThreadID != thread.ID {
			return nil, errorx.ErrNotFound
		}
		body = renderQuote(quoted) + "\n\n" + body
	}

	post := &models.Post{
		ID:       snowflake.GenID(),
		ThreadID: thread.ID,
		AuthorID: userID,
		Body:     body,
	}
	if err := mysql.CreatePost(post); err != nil {
		zap.L().Error("mysql.CreatePost failed",
			zap.Int64("post_id", post.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if p.Subscribe {
		if err := subscribe(userID, thread.ID); err != nil {
			zap.L().Error("subscribe after reply failed",
				zap.Int64("thread_id", thread.ID),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	notifySubscribers(thread, post, slug)

	return post, nil
}

// renderQuote formats a quoted post, attributing each line to its author.
func renderQuote(post *models.Post) string {
	author := "unknown"
	if post.Author != nil {
		author = post.Author.Username
	}
	lines := strings.Split(post.Body, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return fmt.Sprintf("%s wrote:\n%s", author, strings.Join(lines, "\n"))
}

// getOwnPost loads a post and checks the requester wrote it. A foreign post
// is reported as not found, revealing nothing about its existence.
func getOwnPost(userID, pid int64) (*models.Post, error) {
	post, err := mysql.GetPostByID(pid)
	if err != nil {
		zap.L().Error("mysql.GetPostByID failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if post == nil || post.AuthorID != userID {
		return nil, errorx.ErrNotFound
	}
	return post, nil
}

// EditPost replaces the body of the requester's own post.
func EditPost(userID, pid int64, p *models.ParamEditPost) (*models.Post, error) {
	post, err := getOwnPost(userID, pid)
	if err != nil {
		return nil, err
	}

	post.Body = p.Body
	if err := mysql.SavePost(post); err != nil {
		zap.L().Error("mysql.SavePost failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return post, nil
}

// DeletePost removes the requester's own post. The hooks take care of the
// counters, the last-post pointers and thread removal.
func DeletePost(userID, pid int64) error {
	post, err := getOwnPost(userID, pid)
	if err != nil {
		return err
	}

	if err := mysql.DeletePost(post); err != nil {
		zap.L().Error("mysql.DeletePost failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// ModeratePost sets a post's moderation state. The save hooks pick up the
// transition and adjust the aggregates in both directions.
func ModeratePost(pid int64, p *models.ParamModeratePost) error {
	post, err := mysql.GetPostByID(pid)
	if err != nil {
		zap.L().Error("mysql.GetPostByID failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	if post == nil {
		return errorx.ErrNotFound
	}

	if post.ModerationState == p.ModerationState {
		return nil
	}

	post.ModerationState = p.ModerationState
	if err := mysql.SavePost(post); err != nil {
		zap.L().Error("mysql.SavePost failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// GetPostLocator resolves a post permalink: the thread the post belongs to
// and the page of the thread view that contains it. Unmoderated posts are
// invisible.
func GetPostLocator(pid int64) (*models.PostLocator, error) {
	post, err := mysql.GetPostByIDWithPreload(pid)
	if err != nil {
		zap.L().Error("mysql.GetPostByIDWithPreload failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if post == nil || post.ModerationState != models.ModerationOK || post.Thread == nil {
		return nil, errorx.ErrNotFound
	}

	forum, err := mysql.GetForumByID(post.Thread.ForumID)
	if err != nil {
		zap.L().Error("mysql.GetForumByID failed",
			zap.Int64("forum_id", post.Thread.ForumID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if forum == nil {
		return nil, errorx.ErrNotFound
	}

	position, err := mysql.GetPostPosition(post)
	if err != nil {
		zap.L().Error("mysql.GetPostPosition failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	perPage := settings.Conf.Forum.PostsPerPage
	if perPage <= 0 {
		perPage = 20
	}

	return &models.PostLocator{
		Post:     post,
		ThreadID: post.ThreadID,
		ForumID:  forum.ID,
		Slug:     forum.NameSlug,
		Page:     int(position)/perPage + 1,
	}, nil
}
