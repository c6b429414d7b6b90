package main

import (
	"context"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"socialdesk/internal/app"
	"socialdesk/internal/core/config"
	"socialdesk/internal/core/logger"
	"socialdesk/internal/core/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, c, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	a, err := app.New(cfg, db, c, log)
	if err != nil {
		log.Fatal("wiring failed", zap.Error(err))
	}
	defer a.Close()

	// 管理端负责写入种子管理员
	if err := a.Bootstrap(context.Background()); err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	srv := server.BuildServer(cfg.App.Admin, a.AdminEngine())
	log.Info("admin api ready",
		zap.String("health", "http://"+srv.Addr+"/health"),
		zap.String("admin_v1", "http://"+srv.Addr+"/admin/v1"),
	)
	if err := server.Run(srv, "admin api", log); err != nil {
		log.Error("admin api stopped", zap.Error(err))
	}
}
