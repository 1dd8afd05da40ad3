package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/server"
)

func main() {
	logger.Init()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg)

	addr := cfg.AdminServer.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run admin server", zap.Error(err))
	}
}
