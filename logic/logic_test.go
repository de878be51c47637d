package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/mq"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
	"github.com/bangcorrupt/freesound/settings"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init("2020-01-01", 2); err != nil {
		panic(err)
	}
	settings.Conf.Forum = &settings.ForumConfig{
		ThreadsPerPage: 40,
		PostsPerPage:   20,
	}
	settings.Conf.Similarity = &settings.SimilarityConfig{
		Presets:        []string{"lowlevel", "spectral_centroid"},
		DefaultPreset:  "lowlevel",
		Address:        "localhost",
		Port:           8008,
		CacheSize:      100,
		CacheTime:      time.Hour,
		DefaultResults: 15,
	}
	os.Exit(m.Run())
}

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:logic_test_%d?mode=memory&cache=shared", testDBSeq)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mysql.SetDB(conn)
	require.NoError(t, mysql.AutoMigrate())
	return conn
}

func seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		UserID:   snowflake.GenID(),
		Username: username,
		Email:    username + "@freesound.org",
		Password: "secret",
	}
	require.NoError(t, mysql.InsertUser(user))
	return user
}

func seedForum(t *testing.T) *models.Forum {
	t.Helper()
	forum := &models.Forum{
		ID:          snowflake.GenID(),
		Name:        "Sound Design",
		NameSlug:    "sound_design",
		Description: "techniques and recipes",
	}
	require.NoError(t, mysql.CreateForum(forum))
	return forum
}

// recordingPublisher captures published notifications for inspection.
type recordingPublisher struct {
	mu    sync.Mutex
	keys  []string
	notes []mq.Notification
}

func (r *recordingPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n mq.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return err
	}
	r.keys = append(r.keys, routingKey)
	r.notes = append(r.notes, n)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) notifications() []mq.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mq.Notification(nil), r.notes...)
}

func installRecorder(t *testing.T) *recordingPublisher {
	t.Helper()
	rec := new(recordingPublisher)
	mq.SetPublisher(rec)
	t.Cleanup(func() { mq.SetPublisher(nil) })
	return rec
}

func TestCreateThreadAndReply(t *testing.T) {
	newTestDB(t)
	installRecorder(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title:     "Recording rain",
		Body:      "What microphones work outdoors?",
		Subscribe: true,
	})
	require.NoError(t, err)
	require.NotNil(t, thread)

	count, err := mysql.CountSubscriptions(thread.ID, alice.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	post, err := CreateReply(bob.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body: "A hydrophone, obviously.",
	})
	require.NoError(t, err)
	require.NotNil(t, post)

	fresh, err := mysql.GetThreadByID(thread.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, fresh.NumPosts)
	require.NotNil(t, fresh.LastPostID)
	require.Equal(t, post.ID, *fresh.LastPostID)
}

func TestCreateThreadUnknownForum(t *testing.T) {
	newTestDB(t)

	alice := seedUser(t, "alice")
	_, err := CreateThread(alice.UserID, "no_such_forum", &models.ParamNewThread{
		Title: "hello",
		Body:  "anyone here?",
	})
	require.ErrorIs(t, err, errorx.ErrNotFound)
}

func TestPostThrottle(t *testing.T) {
	newTestDB(t)

	settings.Conf.Forum.LastPostMinimumTime = time.Minute
	t.Cleanup(func() { settings.Conf.Forum.LastPostMinimumTime = 0 })

	forum := seedForum(t)
	alice := seedUser(t, "alice")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "first",
		Body:  "first post",
	})
	require.NoError(t, err)

	_, err = CreateReply(alice.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body: "too fast",
	})
	require.ErrorIs(t, err, errorx.ErrPostTooSoon)

	_, err = CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "second",
		Body:  "also too fast",
	})
	require.ErrorIs(t, err, errorx.ErrPostTooSoon)
}

func TestReplyToClosedThread(t *testing.T) {
	db := newTestDB(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "old news",
		Body:  "locked discussion",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Thread{}).
		Where("thread_id = ?", thread.ID).
		UpdateColumn("status", models.ThreadStatusClosed).Error)

	_, err = CreateReply(alice.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body: "necro bump",
	})
	require.ErrorIs(t, err, errorx.ErrThreadClosed)
}

func TestReplyQuotesPost(t *testing.T) {
	newTestDB(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "quoting",
		Body:  "line one\nline two",
	})
	require.NoError(t, err)
	require.NotNil(t, thread.FirstPostID)

	post, err := CreateReply(bob.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body:        "I agree.",
		QuotePostID: *thread.FirstPostID,
	})
	require.NoError(t, err)
	require.Equal(t, "alice wrote:\n> line one\n> line two\n\nI agree.", post.Body)
}

func TestThreadDetailHiddenWhenUnmoderated(t *testing.T) {
	newTestDB(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "pending review",
		Body:  "spammy looking first post",
	})
	require.NoError(t, err)
	require.NotNil(t, thread.FirstPostID)

	detail, err := GetThreadDetail(forum.NameSlug, thread.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, detail.TotalPosts)

	// Pull the only post back out of moderation; the thread must vanish
	// from the public view.
	require.NoError(t, ModeratePost(*thread.FirstPostID, &models.ParamModeratePost{
		ModerationState: models.ModerationNotModerated,
	}))

	_, err = GetThreadDetail(forum.NameSlug, thread.ID, 1, 20)
	require.ErrorIs(t, err, errorx.ErrNotFound)

	// Moderating it back restores the thread.
	require.NoError(t, ModeratePost(*thread.FirstPostID, &models.ParamModeratePost{
		ModerationState: models.ModerationOK,
	}))

	detail, err = GetThreadDetail(forum.NameSlug, thread.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, detail.TotalPosts)
}

func TestEditAndDeletePostOwnership(t *testing.T) {
	newTestDB(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "mine",
		Body:  "original body",
	})
	require.NoError(t, err)
	pid := *thread.FirstPostID

	// A foreign post looks like it does not exist.
	_, err = EditPost(bob.UserID, pid, &models.ParamEditPost{Body: "defaced"})
	require.ErrorIs(t, err, errorx.ErrNotFound)
	require.ErrorIs(t, DeletePost(bob.UserID, pid), errorx.ErrNotFound)

	post, err := EditPost(alice.UserID, pid, &models.ParamEditPost{Body: "edited body"})
	require.NoError(t, err)
	require.Equal(t, "edited body", post.Body)

	// Deleting the only post removes the whole thread.
	require.NoError(t, DeletePost(alice.UserID, pid))
	gone, err := mysql.GetThreadByID(thread.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestReplyNotifiesSubscribersExceptAuthor(t *testing.T) {
	newTestDB(t)
	rec := installRecorder(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")
	bob := seedUser(t, "bob")
	carol := seedUser(t, "carol")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title:     "field recording meetup",
		Body:      "anyone in Barcelona?",
		Subscribe: true,
	})
	require.NoError(t, err)

	// Subscribing twice must not produce a second notification later.
	require.NoError(t, Subscribe(bob.UserID, forum.NameSlug, thread.ID))
	require.NoError(t, Subscribe(bob.UserID, forum.NameSlug, thread.ID))

	post, err := CreateReply(bob.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body: "I am!",
	})
	require.NoError(t, err)

	notes := rec.notifications()
	require.Len(t, notes, 1)
	require.Equal(t, alice.Email, notes[0].To)
	require.Equal(t, "[freesound] topic reply notification - field recording meetup", notes[0].Subject)
	require.Equal(t, thread.ID, notes[0].ThreadID)
	require.Equal(t, post.ID, notes[0].PostID)
	require.Equal(t,
		fmt.Sprintf("/forums/%s/threads/%d#post%d", forum.NameSlug, thread.ID, post.ID),
		notes[0].URL)

	// Carol subscribes late and unsubscribes again; no mail for her.
	require.NoError(t, Subscribe(carol.UserID, forum.NameSlug, thread.ID))
	require.NoError(t, Unsubscribe(carol.UserID, forum.NameSlug, thread.ID))

	_, err = CreateReply(alice.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
		Body: "great, details below",
	})
	require.NoError(t, err)

	notes = rec.notifications()
	require.Len(t, notes, 2)
	require.Equal(t, bob.Email, notes[1].To)
}

func TestGetPostLocator(t *testing.T) {
	newTestDB(t)

	settings.Conf.Forum.PostsPerPage = 2
	t.Cleanup(func() { settings.Conf.Forum.PostsPerPage = 20 })

	forum := seedForum(t)
	alice := seedUser(t, "alice")

	thread, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "long discussion",
		Body:  "post one",
	})
	require.NoError(t, err)

	var last *models.Post
	for i := 0; i < 3; i++ {
		last, err = CreateReply(alice.UserID, forum.NameSlug, thread.ID, &models.ParamReply{
			Body: "another reply",
		})
		require.NoError(t, err)
	}

	// The fourth moderated post lands on page two at two posts per page.
	locator, err := GetPostLocator(last.ID)
	require.NoError(t, err)
	require.Equal(t, thread.ID, locator.ThreadID)
	require.Equal(t, forum.NameSlug, locator.Slug)
	require.Equal(t, 2, locator.Page)

	// An unmoderated post has no public location.
	require.NoError(t, ModeratePost(last.ID, &models.ParamModeratePost{
		ModerationState: models.ModerationNotModerated,
	}))
	_, err = GetPostLocator(last.ID)
	require.ErrorIs(t, err, errorx.ErrNotFound)
}

func TestGetForumDetail(t *testing.T) {
	newTestDB(t)

	forum := seedForum(t)
	alice := seedUser(t, "alice")

	_, err := CreateThread(alice.UserID, forum.NameSlug, &models.ParamNewThread{
		Title: "a thread",
		Body:  "a post",
	})
	require.NoError(t, err)

	detail, err := GetForumDetail(forum.NameSlug, 1, 40)
	require.NoError(t, err)
	require.EqualValues(t, 1, detail.TotalThreads)
	require.Len(t, detail.Threads, 1)
	require.EqualValues(t, 1, detail.NumThreads)
	require.EqualValues(t, 1, detail.NumPosts)

	_, err = GetForumDetail("no_such_forum", 1, 40)
	require.ErrorIs(t, err, errorx.ErrNotFound)
}
