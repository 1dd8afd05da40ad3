package controllers

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"

	"github.com/example/goshop/internal/service"
)

// ProductController 前台商品页面控制器（MVC）。
// 路由在 internal/server/router.go 中通过 Iris MVC 挂载。
type ProductController struct {
	Ctx             iris.Context
	ProductService  *service.ProductService
	CategoryService *service.CategoryService
}

// Get 处理 GET /product
// 商品列表页，支持 ?category=<id>&q=<关键字> 筛选。
func (c *ProductController) Get() mvc.View {
	ctx := c.Ctx.Request().Context()

	var categoryID int64
	if raw := c.Ctx.URLParam("category"); raw != "" {
		categoryID, _ = c.Ctx.URLParamInt64("category")
	}
	keyword := c.Ctx.URLParam("q")

	products, err := c.ProductService.ListOnline(ctx, categoryID, keyword)
	if err != nil {
		return errorView("暂时无法加载商品列表，请稍后重试。")
	}
	categories, err := c.CategoryService.ListAll(ctx)
	if err != nil {
		return errorView("暂时无法加载分类，请稍后重试。")
	}

	return mvc.View{
		Layout: "shared/layout.html",
		Name:   "product/list.html",
		Data: iris.Map{
			"products":   products,
			"categories": categories,
			"keyword":    keyword,
		},
	}
}

// GetBy 处理 GET /product/{id:int64}
// 商品详情页。
func (c *ProductController) GetBy(id int64) mvc.View {
	p, err := c.ProductService.GetByID(c.Ctx.Request().Context(), id)
	if err != nil || p == nil {
		return errorView("商品不存在或已下架")
	}

	return mvc.View{
		Layout: "shared/layout.html",
		Name:   "product/view.html",
		Data: iris.Map{
			"product": p,
		},
	}
}

func errorView(message string) mvc.View {
	return mvc.View{
		Layout: "shared/layout.html",
		Name:   "shared/error.html",
		Data: iris.Map{
			"showMessage": message,
		},
	}
}
