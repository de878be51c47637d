package logic

import (
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/settings"
)

// GetForumList returns all forums with their denormalized aggregates.
func GetForumList() ([]*models.Forum, error) {
	forums, err := mysql.GetForumList()
	if err != nil {
		zap.L().Error("mysql.GetForumList failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return forums, nil
}

// GetForumDetail returns a forum and one page of its threads.
func GetForumDetail(slug string, page, size int) (*models.ForumDetail, error) {
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

	if size <= 0 {
		size = settings.Conf.Forum.ThreadsPerPage
	}
	if page <= 0 {
		page = 1
	}

	threads, err := mysql.GetThreadsByForumID(forum.ID, page, size)
	if err != nil {
		zap.L().Error("mysql.GetThreadsByForumID failed",
			zap.Int64("forum_id", forum.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	total, err := mysql.CountThreadsByForumID(forum.ID)
	if err != nil {
		zap.L().Error("mysql.CountThreadsByForumID failed",
			zap.Int64("forum_id", forum.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &models.ForumDetail{
		Forum:        forum,
		Threads:      threads,
		TotalThreads: total,
		Page:         page,
		Size:         size,
	}, nil
}
