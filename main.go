package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/controller"
	"github.com/bangcorrupt/freesound/dao/mysql"
	"github.com/bangcorrupt/freesound/dao/redis"
	"github.com/bangcorrupt/freesound/logger"
	"github.com/bangcorrupt/freesound/logic"
	"github.com/bangcorrupt/freesound/pkg/mq"
	"github.com/bangcorrupt/freesound/pkg/snowflake"
	"github.com/bangcorrupt/freesound/routers"
	"github.com/bangcorrupt/freesound/settings"
)

func main() {
	var confFile string
	flag.StringVar(&confFile, "conf", "./config.yaml", "path to the configuration file")
	flag.Parse()

	if err := settings.Init(confFile); err != nil {
		fmt.Printf("init settings failed, err:%v\n", err)
		return
	}

	if err := snowflake.Init(settings.Conf.Snowflake.StartTime, settings.Conf.Snowflake.MachineID); err != nil {
		fmt.Printf("init snowflake failed, err:%v\n", err)
		return
	}

	if err := logger.Init(settings.Conf.Log, settings.Conf.App.Mode); err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return
	}
	defer zap.L().Sync()

	// The database is a hard dependency: refuse to run without it.
	if err := mysql.Init(settings.Conf.Mysql); err != nil {
		zap.L().Fatal("init mysql failed", zap.Error(err))
	}
	defer mysql.Close()

	if err := mysql.AutoMigrate(); err != nil {
		zap.L().Fatal("migrate schema failed", zap.Error(err))
	}

	if err := redis.Init(settings.Conf.Redis); err != nil {
		zap.L().Fatal("init redis failed", zap.Error(err))
	}
	defer redis.Close()

	// Notifications are best-effort: a broken broker only disables them.
	if err := mq.Init(settings.Conf.RabbitMQ); err != nil {
		zap.L().Error("init rabbitmq failed, notifications disabled", zap.Error(err))
	}
	defer mq.Close()

	logic.InitSimilarity(settings.Conf.Similarity)

	if err := controller.InitTrans("en"); err != nil {
		zap.L().Fatal("init validator trans failed", zap.Error(err))
	}

	r := routers.SetupRouter(settings.Conf.App.Mode)

	port := settings.Conf.App.Port
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		zap.L().Info("server is running", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Fatal("server shutdown failed", zap.Error(err))
	}

	zap.L().Info("server exited")
}
