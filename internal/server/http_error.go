package server

import (
	"errors"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/service"
)

// replyError 在边界把业务错误映射为 HTTP 状态码。
// 内部状态不外漏，只返回可读消息。
func replyError(ctx iris.Context, err error) {
	var (
		notFound     *service.NotFoundError
		insufficient *service.InsufficientStockError
		invalid      *service.InvalidTransitionError
		validation   *service.ValidationError
	)

	status := iris.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = iris.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = iris.StatusForbidden
	case errors.Is(err, service.ErrEmptyCart),
		errors.As(err, &insufficient),
		errors.As(err, &invalid),
		errors.As(err, &validation):
		status = iris.StatusBadRequest
	}

	ctx.StopWithJSON(status, iris.Map{"code": status, "msg": err.Error()})
}
