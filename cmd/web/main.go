package main

import (
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
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
	// 注册 HTML 模板引擎，使用本项目下的 web/views 目录
	tmpl := iris.HTML("./web/views", ".html")
	tmpl.Reload(true) // 开发模式下启用热重载，方便调试

	// 金额格式化：decimal -> $19.99
	tmpl.AddFunc("formatPrice", func(price decimal.Decimal) string {
		return "$" + price.StringFixed(2)
	})
	tmpl.AddFunc("lineSubtotal", func(price decimal.Decimal, qty int64) decimal.Decimal {
		return price.Mul(decimal.NewFromInt(qty))
	})

	app.RegisterView(tmpl)

	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
