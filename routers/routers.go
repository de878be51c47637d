package routers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bangcorrupt/freesound/controller"
	"github.com/bangcorrupt/freesound/logger"
	"github.com/bangcorrupt/freesound/middlewares"
	"github.com/bangcorrupt/freesound/settings"
)

// SetupRouter wires middlewares and routes.
// mode: gin run mode (debug, release, test).
func SetupRouter(mode string) *gin.Engine {
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	fillInterval := 10 * time.Millisecond
	capacity := int64(200)
	if cfg := settings.Conf.RateLimit; cfg != nil {
		if d, err := time.ParseDuration(cfg.FillInterval); err == nil {
			fillInterval = d
		}
		if cfg.Capacity > 0 {
			capacity = cfg.Capacity
		}
	}

	r.Use(
		logger.GinLogger(),
		logger.GinRecovery(true),
		middlewares.RateLimitMiddleware(fillInterval, capacity),
		middlewares.TimeoutMiddleware(10*time.Second),
		middlewares.MetricsMiddleware(),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if mode != gin.ReleaseMode {
		pprof.Register(r)
	}

	v1 := r.Group("/api/v1")

	// Public routes: browsing the forums and the account endpoints.
	{
		v1.POST("/signup", controller.SignUpHandler)
		v1.POST("/login", controller.LoginHandler)
		v1.POST("/refresh_token", controller.RefreshTokenHandler)

		v1.GET("/forums", controller.ForumListHandler)
		v1.GET("/forums/:slug", controller.ForumDetailHandler)
		v1.GET("/forums/:slug/threads/:tid", controller.ThreadDetailHandler)
		v1.GET("/posts/:pid", controller.PostLocatorHandler)

		v1.GET("/sounds/:sid/similar", controller.SimilarSoundsHandler)
	}

	// Authenticated routes: everything that writes.
	authGroup := v1.Group("")
	authGroup.Use(middlewares.JWTAuthMiddleware())
	{
		authGroup.POST("/forums/:slug/threads", controller.CreateThreadHandler)
		authGroup.POST("/forums/:slug/threads/:tid/posts", controller.ReplyHandler)

		authGroup.PUT("/posts/:pid", controller.EditPostHandler)
		authGroup.DELETE("/posts/:pid", controller.DeletePostHandler)
		authGroup.POST("/posts/:pid/moderate", controller.ModeratePostHandler)

		authGroup.POST("/forums/:slug/threads/:tid/subscription", controller.SubscribeHandler)
		authGroup.DELETE("/forums/:slug/threads/:tid/subscription", controller.UnsubscribeHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"msg": "404 page not found",
		})
	})

	return r
}
