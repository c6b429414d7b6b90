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

	if cfg.Stats.RefreshOnRun {
		if _, err := a.Stats.Recompute(context.Background()); err != nil {
			log.Warn("statistics refresh on start failed", zap.Error(err))
		}
	}

	srv := server.BuildServer(cfg.App.HTTP, a.APIEngine())
	log.Info("user api ready",
		zap.String("health", "http://"+srv.Addr+"/health"),
		zap.String("api_v1", "http://"+srv.Addr+"/api/v1"),
	)
	if err := server.Run(srv, "user api", log); err != nil {
		log.Error("user api stopped", zap.Error(err))
	}
}
