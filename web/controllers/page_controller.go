package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/service"
)

// PageController 渲染需要登录态的页面（购物车、我的订单）。
// 登录态从 cookie 里的 token 还原，没有或失效就引导去登录页。
type PageController struct {
	jwtCfg   *config.JWTConfig
	cartSvc  *service.CartService
	orderSvc *service.OrderService
}

// NewPageController 构造函数
func NewPageController(jwtCfg *config.JWTConfig, cartSvc *service.CartService, orderSvc *service.OrderService) *PageController {
	return &PageController{jwtCfg: jwtCfg, cartSvc: cartSvc, orderSvc: orderSvc}
}

// claimsFromCookie 从 cookie 还原登录用户，失败返回 nil
func (c *PageController) claimsFromCookie(ctx iris.Context) *auth.Claims {
	token := ctx.GetCookie("token")
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(c.jwtCfg, token)
	if err != nil {
		return nil
	}
	return claims
}

// ShowCart 渲染购物车页面。
func (c *PageController) ShowCart(ctx iris.Context) {
	claims := c.claimsFromCookie(ctx)
	if claims == nil {
		ctx.Redirect("/user/login", iris.StatusFound)
		return
	}

	cart, err := c.cartSvc.GetOrCreate(ctx.Request().Context(), claims.UserID)
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载购物车，请稍后重试。</h2>")
		return
	}
	total, err := c.cartSvc.Total(ctx.Request().Context(), claims.UserID)
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载购物车，请稍后重试。</h2>")
		return
	}

	ctx.ViewLayout("shared/layout.html")
	if err := ctx.View("cart/view.html", iris.Map{
		"cart":     cart,
		"total":    total,
		"username": claims.Username,
	}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载购物车，请稍后重试。</h2>")
	}
}

// ShowOrders 渲染我的订单页面。
func (c *PageController) ShowOrders(ctx iris.Context) {
	claims := c.claimsFromCookie(ctx)
	if claims == nil {
		ctx.Redirect("/user/login", iris.StatusFound)
		return
	}

	orders, err := c.orderSvc.FindAll(ctx.Request().Context(), claims.UserID, false)
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载订单，请稍后重试。</h2>")
		return
	}

	ctx.ViewLayout("shared/layout.html")
	if err := ctx.View("order/list.html", iris.Map{
		"orders":   orders,
		"username": claims.Username,
	}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载订单，请稍后重试。</h2>")
	}
}
