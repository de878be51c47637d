package mysql

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init("2020-01-01", 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testDBSeq int

// newTestDB points the package at a fresh in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:mysql_test_%d?mode=memory&cache=shared", testDBSeq)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	SetDB(conn)
	require.NoError(t, AutoMigrate())
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
	require.NoError(t, InsertUser(user))
	return user
}

func seedForum(t *testing.T, name, slug string) *models.Forum {
	t.Helper()
	forum := &models.Forum{ID: snowflake.GenID(), Name: name, NameSlug: slug, Description: "test"}
	require.NoError(t, CreateForum(forum))
	return forum
}

func seedThread(t *testing.T, forum *models.Forum, author *models.User, title string) *models.Thread {
	t.Helper()
	thread := &models.Thread{
		ID:       snowflake.GenID(),
		ForumID:  forum.ID,
		AuthorID: author.UserID,
		Title:    title,
		Status:   models.ThreadStatusRegular,
	}
	post := &models.Post{ID: snowflake.GenID(), AuthorID: author.UserID, Body: "opening post"}
	require.NoError(t, CreateThreadWithFirstPost(thread, post))
	return thread
}

func TestForumLookup(t *testing.T) {
	newTestDB(t)

	seedForum(t, "Sound Design", "sound_design")

	forum, err := GetForumBySlug("sound_design")
	require.NoError(t, err)
	require.NotNil(t, forum)
	require.Equal(t, "Sound Design", forum.Name)

	missing, err := GetForumBySlug("no_such_forum")
	require.NoError(t, err)
	require.Nil(t, missing)

	byID, err := GetForumByID(forum.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, forum.NameSlug, byID.NameSlug)
}

func TestForumListOrder(t *testing.T) {
	newTestDB(t)

	seedForum(t, "Sample Packs", "sample_packs")
	seedForum(t, "Bug Reports", "bug_reports")

	forums, err := GetForumList()
	require.NoError(t, err)
	require.Len(t, forums, 2)
	require.Equal(t, "Bug Reports", forums[0].Name)
	require.Equal(t, "Sample Packs", forums[1].Name)
}

func TestCreateThreadWithFirstPost(t *testing.T) {
	newTestDB(t)

	user := seedUser(t, "alice")
	forum := seedForum(t, "Sound Design", "sound_design")
	thread := seedThread(t, forum, user, "How do I make rain sounds?")

	require.NotNil(t, thread.FirstPostID)

	fresh, err := GetThreadByID(thread.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	require.EqualValues(t, 1, fresh.NumPosts)
	require.NotNil(t, fresh.LastPostID)
	require.Equal(t, *thread.FirstPostID, *fresh.LastPostID)

	freshForum, err := GetForumByID(forum.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, freshForum.NumThreads)
	require.EqualValues(t, 1, freshForum.NumPosts)
}

func TestGetThreadsByForumIDOrder(t *testing.T) {
	db := newTestDB(t)

	user := seedUser(t, "alice")
	forum := seedForum(t, "Sound Design", "sound_design")

	older := seedThread(t, forum, user, "older activity")
	newer := seedThread(t, forum, user, "newer activity")
	sticky := seedThread(t, forum, user, "forum rules")
	require.NoError(t, db.Model(&models.Thread{}).
		Where("thread_id = ?", sticky.ID).
		UpdateColumn("status", models.ThreadStatusSticky).Error)

	// A thread whose only post is unmoderated has no last_post and sorts
	// after everything with activity.
	empty := &models.Thread{ID: snowflake.GenID(), ForumID: forum.ID, AuthorID: user.UserID, Title: "unmoderated"}
	require.NoError(t, db.Create(empty).Error)
	require.NoError(t, CreatePost(&models.Post{
		ID:              snowflake.GenID(),
		ThreadID:        empty.ID,
		AuthorID:        user.UserID,
		Body:            "hidden",
		ModerationState: models.ModerationNotModerated,
	}))

	// Bump "newer" so its last post is the most recent in the forum.
	require.NoError(t, CreatePost(&models.Post{
		ID:       snowflake.GenID(),
		ThreadID: newer.ID,
		AuthorID: user.UserID,
		Body:     "reply",
	}))

	threads, err := GetThreadsByForumID(forum.ID, 1, 40)
	require.NoError(t, err)
	require.Len(t, threads, 4)
	require.Equal(t, sticky.ID, threads[0].ID)
	require.Equal(t, newer.ID, threads[1].ID)
	require.Equal(t, older.ID, threads[2].ID)
	require.Equal(t, empty.ID, threads[3].ID)

	count, err := CountThreadsByForumID(forum.ID)
	require.NoError(t, err)
	require.EqualValues(t, 4, count)
}

func TestGetPostPosition(t *testing.T) {
	newTestDB(t)

	user := seedUser(t, "alice")
	forum := seedForum(t, "Sound Design", "sound_design")
	thread := seedThread(t, forum, user, "position test")

	newPost := func(state string) *models.Post {
		post := &models.Post{
			ID:              snowflake.GenID(),
			ThreadID:        thread.ID,
			AuthorID:        user.UserID,
			Body:            "post",
			ModerationState: state,
		}
		require.NoError(t, CreatePost(post))
		return post
	}

	second := newPost(models.ModerationOK)
	newPost(models.ModerationNotModerated)
	third := newPost(models.ModerationOK)

	// The opening post is position 0; unmoderated posts do not count.
	pos, err := GetPostPosition(second)
	require.NoError(t, err)
	require.EqualValues(t, 1, pos)

	pos, err = GetPostPosition(third)
	require.NoError(t, err)
	require.EqualValues(t, 2, pos)
}

func TestGetLatestPostByAuthor(t *testing.T) {
	newTestDB(t)

	user := seedUser(t, "alice")
	forum := seedForum(t, "Sound Design", "sound_design")

	latest, err := GetLatestPostByAuthor(user.UserID)
	require.NoError(t, err)
	require.Nil(t, latest)

	thread := seedThread(t, forum, user, "throttle test")
	reply := &models.Post{ID: snowflake.GenID(), ThreadID: thread.ID, AuthorID: user.UserID, Body: "again"}
	require.NoError(t, CreatePost(reply))

	latest, err = GetLatestPostByAuthor(user.UserID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, reply.ID, latest.ID)
}

func TestSubscriptionDedup(t *testing.T) {
	newTestDB(t)

	user := seedUser(t, "alice")
	forum := seedForum(t, "Sound Design", "sound_design")
	thread := seedThread(t, forum, user, "subscribe me")

	first := &models.Subscription{
		ID:           snowflake.GenID(),
		ThreadID:     thread.ID,
		SubscriberID: user.UserID,
	}
	require.NoError(t, CreateSubscription(first))

	// A second subscribe always carries a fresh primary key; it must find
	// the existing pair anyway and hand it back instead of inserting.
	second := &models.Subscription{
		ID:           snowflake.GenID(),
		ThreadID:     thread.ID,
		SubscriberID: user.UserID,
	}
	require.NoError(t, CreateSubscription(second))
	require.Equal(t, first.ID, second.ID)

	count, err := CountSubscriptions(thread.ID, user.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	subscribers, err := GetThreadSubscribers(thread.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	require.Equal(t, user.Username, subscribers[0].Username)

	require.NoError(t, DeleteSubscription(thread.ID, user.UserID))
	count, err = CountSubscriptions(thread.ID, user.UserID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestUserCredentials(t *testing.T) {
	newTestDB(t)

	user := seedUser(t, "alice")
	require.NotEqual(t, "secret", user.Password)

	require.ErrorIs(t, CheckUserExist("alice"), ErrorUserExist)
	require.NoError(t, CheckUserExist("bob"))

	login := &models.User{Username: "alice", Password: "secret"}
	require.NoError(t, CheckLogin(login))
	require.Equal(t, user.UserID, login.UserID)

	badLogin := &models.User{Username: "alice", Password: "wrong"}
	require.ErrorIs(t, CheckLogin(badLogin), ErrorInvalidPassword)

	ghost := &models.User{Username: "nobody", Password: "secret"}
	require.ErrorIs(t, CheckLogin(ghost), ErrorUserNotExist)
}
