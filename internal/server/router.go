package server

import (
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
	webcontrollers "github.com/example/goshop/web/controllers"
)

// RegisterRoutes 注册前台所有 HTTP 路由（JSON API + 服务端渲染页面）
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 静态资源
	app.HandleDir("/assets", iris.Dir("./web/assets"))

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
	addressSvc := service.NewAddressService(addressRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	inventorySvc := service.NewInventoryService(productRepo)
	events := service.NewMQEventPublisher(mqConn)
	orderSvc := service.NewOrderService(orderRepo, addressRepo, cartSvc, inventorySvc, txManager, events)

	tokenCache := auth.NewTokenCache(redisClient, tokenCacheTTL(&cfg.JWT))
	requireAuth := AuthMiddleware(&cfg.JWT, tokenCache)

	// ---------- 服务端渲染页面 ----------

	userCtrl := webcontrollers.NewUserController(userSvc)
	app.Get("/user/login", userCtrl.ShowLogin)
	app.Post("/user/login", userCtrl.PostLogin)
	app.Get("/user/register", userCtrl.ShowRegister)
	app.Post("/user/register", userCtrl.PostAdd)
	app.Get("/user/logout", userCtrl.Logout)

	app.Get("/", func(ctx iris.Context) {
		ctx.Redirect("/product", iris.StatusFound)
	})
	shop := mvc.New(app.Party("/product"))
	shop.Register(productSvc, categorySvc)
	shop.Handle(new(webcontrollers.ProductController))

	pages := webcontrollers.NewPageController(&cfg.JWT, cartSvc, orderSvc)
	app.Get("/cart", pages.ShowCart)
	app.Get("/orders", pages.ShowOrders)

	// ---------- JSON API ----------

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 注册 / 登录
	api.Post("/register", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Register(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	api.Post("/login", func(ctx iris.Context) {
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

	// 商品与分类（公开）
	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/products", func(ctx iris.Context) {
		categoryID, _ := strconv.ParseInt(ctx.URLParam("category"), 10, 64)
		keyword := ctx.URLParam("q")
		list, err := productSvc.ListOnline(ctx.Request().Context(), categoryID, keyword)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Get("/products/slug/{slug}", func(ctx iris.Context) {
		p, err := productSvc.GetBySlug(ctx.Request().Context(), ctx.Params().GetString("slug"))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 需要登录的接口
	authAPI := api.Party("/", requireAuth)

	// ---------- 购物车 ----------

	authAPI.Get("/cart", func(ctx iris.Context) {
		c, err := cartSvc.GetOrCreate(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		total, err := cartSvc.Total(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"cart": c, "total": total}})
	})

	authAPI.Post("/cart/items", func(ctx iris.Context) {
		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c, err := cartSvc.AddLine(ctx.Request().Context(), currentUserID(ctx), req.ProductID, req.Quantity)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	authAPI.Put("/cart/items/{id:int64}", func(ctx iris.Context) {
		lineID, _ := ctx.Params().GetInt64("id")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c, err := cartSvc.UpdateLine(ctx.Request().Context(), currentUserID(ctx), lineID, req.Quantity)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	authAPI.Delete("/cart/items/{id:int64}", func(ctx iris.Context) {
		lineID, _ := ctx.Params().GetInt64("id")
		c, err := cartSvc.RemoveLine(ctx.Request().Context(), currentUserID(ctx), lineID)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	authAPI.Delete("/cart", func(ctx iris.Context) {
		if err := cartSvc.Clear(ctx.Request().Context(), currentUserID(ctx)); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "cart cleared"})
	})

	// ---------- 地址簿 ----------

	authAPI.Get("/addresses", func(ctx iris.Context) {
		list, err := addressSvc.ListByUser(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Post("/addresses", func(ctx iris.Context) {
		var req addressRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := req.toModel()
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := addressSvc.Create(ctx.Request().Context(), currentUserID(ctx), a); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	authAPI.Put("/addresses/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req addressRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := req.toModel()
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a.ID = id
		if err := addressSvc.Update(ctx.Request().Context(), currentUserID(ctx), a); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	authAPI.Delete("/addresses/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := addressSvc.Delete(ctx.Request().Context(), id, currentUserID(ctx)); err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "address deleted"})
	})

	// ---------- 订单 ----------

	// 下单：购物车一次性转为订单，带限流
	authAPI.Post("/orders", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		var req struct {
			AddressID int64 `json:"address_id"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.PlaceOrder(ctx.Request().Context(), currentUserID(ctx), req.AddressID)
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	authAPI.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.FindAll(ctx.Request().Context(), currentUserID(ctx), isAdmin(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Get("/orders/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		o, err := orderSvc.FindOne(ctx.Request().Context(), id, currentUserID(ctx), isAdmin(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	authAPI.Patch("/orders/{id:int64}/cancel", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		o, err := orderSvc.Cancel(ctx.Request().Context(), id, currentUserID(ctx))
		if err != nil {
			replyError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})
}
