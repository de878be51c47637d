package models

import "time"

// Moderation states of a forum post. Some users' posts are held for review
// (NM) and stay invisible until a moderator flips them to OK. Only OK posts
// count toward the denormalized aggregates.
const (
	ModerationOK           = "OK"
	ModerationNotModerated = "NM"
)

// Thread status values.
const (
	ThreadStatusSticky  int32 = 0
	ThreadStatusRegular int32 = 1
	ThreadStatusClosed  int32 = 2
)

// Forum aggregates thread and post counts across all of its threads.
// num_threads, num_posts and last_post_id are maintained by the hooks in
// hooks.go, never written by handlers directly.
type Forum struct {
	ID          int64  `json:"id,string" gorm:"column:forum_id;primaryKey"`
	Name        string `json:"name" gorm:"column:name;size:50;not null"`
	NameSlug    string `json:"name_slug" gorm:"column:name_slug;uniqueIndex;size:50;not null"`
	Description string `json:"description" gorm:"column:description;size:250"`

	NumThreads int64  `json:"num_threads" gorm:"column:num_threads;default:0"`
	NumPosts   int64  `json:"num_posts" gorm:"column:num_posts;default:0"`
	LastPostID *int64 `json:"last_post_id,omitempty" gorm:"column:last_post_id"`

	Created time.Time `json:"created" gorm:"column:created;autoCreateTime"`

	LastPost *Post `json:"last_post,omitempty" gorm:"foreignKey:LastPostID;references:ID"`
}

func (Forum) TableName() string { return "forum" }

// Thread belongs to exactly one forum. num_posts and last_post_id reflect
// only moderated posts; first_post_id is set once when the opening post is
// created.
type Thread struct {
	ID       int64  `json:"id,string" gorm:"column:thread_id;primaryKey"`
	ForumID  int64  `json:"forum_id,string" gorm:"column:forum_id;index;not null"`
	AuthorID int64  `json:"author_id,string" gorm:"column:author_id;index;not null"`
	Title    string `json:"title" gorm:"column:title;size:250;not null"`
	Status   int32  `json:"status" gorm:"column:status;default:1"`

	NumPosts    int64  `json:"num_posts" gorm:"column:num_posts;default:0"`
	LastPostID  *int64 `json:"last_post_id,omitempty" gorm:"column:last_post_id"`
	FirstPostID *int64 `json:"first_post_id,omitempty" gorm:"column:first_post_id"`

	Created time.Time `json:"created" gorm:"column:created;autoCreateTime"`

	Forum    *Forum `json:"forum,omitempty" gorm:"foreignKey:ForumID;references:ID"`
	LastPost *Post  `json:"last_post,omitempty" gorm:"foreignKey:LastPostID;references:ID"`
}

func (Thread) TableName() string { return "thread" }

// Post is a single message in a thread.
type Post struct {
	ID              int64  `json:"id,string" gorm:"column:post_id;primaryKey"`
	ThreadID        int64  `json:"thread_id,string" gorm:"column:thread_id;index;not null"`
	AuthorID        int64  `json:"author_id,string" gorm:"column:author_id;index;not null"`
	Body            string `json:"body" gorm:"column:body;type:text;not null"`
	ModerationState string `json:"moderation_state" gorm:"column:moderation_state;size:2;default:OK;index"`

	Created  time.Time `json:"created" gorm:"column:created;autoCreateTime"`
	Modified time.Time `json:"modified" gorm:"column:modified;autoUpdateTime"`

	Thread *Thread `json:"thread,omitempty" gorm:"foreignKey:ThreadID;references:ID"`
	Author *User   `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:UserID"`
}

func (Post) TableName() string { return "post" }

// Subscription links a user to a thread for reply notifications,
// deduplicated per (thread, subscriber) pair.
type Subscription struct {
	ID           int64 `json:"id,string" gorm:"column:subscription_id;primaryKey"`
	ThreadID     int64 `json:"thread_id,string" gorm:"column:thread_id;uniqueIndex:idx_thread_subscriber;not null"`
	SubscriberID int64 `json:"subscriber_id,string" gorm:"column:subscriber_id;uniqueIndex:idx_thread_subscriber;not null"`

	Created time.Time `json:"created" gorm:"column:created;autoCreateTime"`
}

func (Subscription) TableName() string { return "subscription" }
