package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/mq"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
)

// Subscribe subscribes a user to a thread's replies. Subscribing twice is a
// no-op.
func Subscribe(userID int64, slug string, tid int64) error {
	thread, err := getThreadInForum(slug, tid)
	if err != nil {
		return err
	}
	return subscribe(userID, thread.ID)
}

func subscribe(userID, threadID int64) error {
	sub := &models.Subscription{
		ID:           snowflake.GenID(),
		ThreadID:     threadID,
		SubscriberID: userID,
	}
	if err := mysql.CreateSubscription(sub); err != nil {
		zap.L().Error("mysql.CreateSubscription failed",
			zap.Int64("thread_id", threadID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// Unsubscribe removes a user's subscription to a thread.
func Unsubscribe(userID int64, slug string, tid int64) error {
	thread, err := getThreadInForum(slug, tid)
	if err != nil {
		return err
	}

	if err := mysql.DeleteSubscription(thread.ID, userID); err != nil {
		zap.L().Error("mysql.DeleteSubscription failed",
			zap.Int64("thread_id", thread.ID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// notifySubscribers publishes one reply notification per subscriber of the
// thread, skipping the author of the new post. Notification failures are
// logged and swallowed; they never fail the posting request.
func notifySubscribers(thread *models.Thread, post *models.Post, slug string) {
	subscribers, err := mysql.GetThreadSubscribers(thread.ID)
	if err != nil {
		zap.L().Error("mysql.GetThreadSubscribers failed",
			zap.Int64("thread_id", thread.ID),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, subscriber := range subscribers {
		if subscriber.UserID == post.AuthorID {
			continue
		}
		n := &mq.Notification{
			To:       subscriber.Email,
			Subject:  fmt.Sprintf("[freesound] topic reply notification - %s", thread.Title),
			ThreadID: thread.ID,
			PostID:   post.ID,
			URL:      fmt.Sprintf("/forums/%s/threads/%d#post%d", slug, thread.ID, post.ID),
		}
		if err := mq.Publish(ctx, mq.RoutingKeyReplyNotification, n); err != nil {
			zap.L().Error("publish reply notification failed",
				zap.Int64("thread_id", thread.ID),
				zap.Int64("post_id", post.ID),
				zap.String("to", subscriber.Email),
				zap.Error(err))
		}
	}
}
