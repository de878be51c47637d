package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/bangcorrupt/freesound/logic"
)

// ForumListHandler returns all forums with their aggregates.
func ForumListHandler(c *gin.Context) {
	data, err := logic.GetForumList()
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, data)
}

// ForumDetailHandler returns a forum and one page of its threads.
func ForumDetailHandler(c *gin.Context) {
	slug := c.Param("slug")
	page, size := getPageInfo(c)

	data, err := logic.GetForumDetail(slug, page, size)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, data)
}
