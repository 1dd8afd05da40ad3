package server

import (
	"github.com/kataras/iris/v12"
	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由。
// 端口通常是 8081，与前台 Web 服务分离，所有接口要求 admin 角色。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	txManager := mysql.NewTxManager(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, redisClient, cfg.Catalog.CacheTTLSeconds)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	inventorySvc := service.NewInventoryService(productRepo)
	events := service.NewMQEventPublisher(mqConn)
	orderSvc := service.NewOrderService(orderRepo, addressRepo, cartSvc, inventorySvc, txManager, events)

	tokenCache := auth.NewTokenCache(redisClient, tokenCacheTTL(&cfg.JWT))

	app.Get("/api/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 管理端登录复用同一套 JWT
	app.Post("/api/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	api := app.Party("/api", AuthMiddleware(&cfg.JWT, tokenCache), AdminOnly())

	// ---------- 分类管理 ----------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/categories", func(ctx iris.Context) {
		var c category.Category
		if err := ctx.ReadJSON(&c); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := categorySvc.Create(ctx.Request().Context(), &c); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Put("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		c, err := categorySvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			replyError(ctx, err)
			return
		}
		var req category.Category
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Name != "" {
			c.Name = req.Name
		}
		if req.Slug != "" {
			c.Slug = req.Slug
		}
		if req.Description != "" {
			c.Description = req.Description
		}
		if err := categorySvc.Update(ctx.Request().Context(), c); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := categorySvc.Delete(ctx.Request().Context(), id); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "category deleted"})
	})

	// ---------- 商品管理 ----------

	api.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListAll(ctx.Request().Context())
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p := &product.Product{Status: product.StatusOnline}
		if err := req.applyTo(p, false); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), p); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			replyError(ctx, err)
			return
		}
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.applyTo(p, true); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Update(ctx.Request().Context(), p); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Delete("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := productSvc.Delete(ctx.Request().Context(), id); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "product deleted"})
	})

	// 商品图片
	api.Post("/products/{id:int64}/images", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var img product.Image
		if err := ctx.ReadJSON(&img); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.AddImage(ctx.Request().Context(), id, &img); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": img})
	})

	api.Delete("/products/{id:int64}/images/{imageID:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		imageID, _ := ctx.Params().GetInt64("imageID")
		if err := productSvc.RemoveImage(ctx.Request().Context(), id, imageID); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "image removed"})
	})

	// 库存覆写：库存台账的管理入口
	api.Put("/products/{id:int64}/stock", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Stock int64 `json:"stock"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := inventorySvc.SetAbsolute(ctx.Request().Context(), id, req.Stock)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// ---------- 订单管理 ----------

	api.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.FindAll(ctx.Request().Context(), 0, true)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/orders/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		o, err := orderSvc.FindOne(ctx.Request().Context(), id, 0, true)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 状态推进：按状态机转移，取消时回补库存
	api.Patch("/orders/{id:int64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		target := order.Status(req.Status)
		if !target.Valid() {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "unknown status: " + req.Status})
			return
		}
		o, err := orderSvc.Transition(ctx.Request().Context(), id, target)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- 用户与运行指标 ----------

	api.Get("/users", func(ctx iris.Context) {
		list, err := userSvc.ListAll(ctx.Request().Context())
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 运行指标：进程内计数 + order-worker 落到 Redis 的事件计数
	api.Get("/stats", func(ctx iris.Context) {
		stats := service.GetMonitor().Snapshot()
		events := iris.Map{}
		for _, evt := range []string{service.EventOrderPlaced, service.EventOrderCancelled} {
			var count string
			if err := redisClient.Do(radix.Cmd(&count, "GET", "orders:stats:"+evt)); err == nil && count != "" {
				events[evt] = count
			}
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"monitor": stats, "events": events}})
	})
}
