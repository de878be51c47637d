package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/pkg/errorx"
)

// SimilarSoundsHandler returns sounds similar to the given sound under an
// optional descriptor preset.
func SimilarSoundsHandler(c *gin.Context) {
	sid, err := stringToInt64(c.Param("sid"))
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	preset := c.Query("preset")
	num, _ := strconv.Atoi(c.Query("num"))

	data, err := logic.GetSimilarSounds(c.Request.Context(), sid, preset, num)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, data)
}
