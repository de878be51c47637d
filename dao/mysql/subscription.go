package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bangcorrupt/freesound/models"
)

// CreateSubscription subscribes a user to a thread. Repeated subscribes are
// no-ops: an existing (thread, subscriber) row is returned in sub instead of
// inserting a second one. The lookup runs on the pair alone, so the fresh
// primary key in sub never ends up in the query conditions.
func CreateSubscription(sub *models.Subscription) error {
	existing := new(models.Subscription)
	err := db.Where("thread_id = ? AND subscriber_id = ?", sub.ThreadID, sub.SubscriberID).
		First(existing).Error
	if err == nil {
		*sub = *existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("query subscription failed: %w", err)
	}

	if err := db.Create(sub).Error; err != nil {
		return fmt.Errorf("insert subscription failed: %w", err)
	}
	return nil
}

// DeleteSubscription unsubscribes a user from a thread.
func DeleteSubscription(threadID, subscriberID int64) error {
	err := db.Where("thread_id = ? AND subscriber_id = ?", threadID, subscriberID).
		Delete(&models.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("delete subscription failed: %w", err)
	}
	return nil
}

// CountSubscriptions counts subscriptions for a (thread, subscriber) pair.
func CountSubscriptions(threadID, subscriberID int64) (count int64, err error) {
	err = db.Model(&models.Subscription{}).
		Where("thread_id = ? AND subscriber_id = ?", threadID, subscriberID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count subscriptions failed: %w", err)
	}
	return count, nil
}

// GetThreadSubscribers returns the users subscribed to a thread.
func GetThreadSubscribers(threadID int64) (users []*models.User, err error) {
	users = make([]*models.User, 0)
	err = db.Model(&models.User{}).
		Joins("JOIN subscription ON subscription.subscriber_id = user.user_id").
		Where("subscription.thread_id = ?", threadID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("query thread subscribers failed: %w", err)
	}
	return users, nil
}
