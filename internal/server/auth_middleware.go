package server

import (
	"strings"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/service"
)

// bearerToken 从 Authorization 头取 token，兼容带/不带 Bearer 前缀
func bearerToken(ctx iris.Context) string {
	raw := ctx.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

// AuthMiddleware 登录校验：优先命中 Redis 中缓存的解析结果，
// 未命中再做签名校验并回填缓存。
func AuthMiddleware(jwtCfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		var claims *auth.Claims
		if cache != nil {
			if cached, hit, err := cache.Get(ctx.Request().Context(), token); err != nil {
				service.GetMonitor().RecordRedisError()
			} else if hit {
				claims = cached
			}
		}
		if claims == nil {
			parsed, err := auth.ParseToken(jwtCfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			claims = parsed
			if cache != nil {
				if err := cache.Set(ctx.Request().Context(), token, claims); err != nil {
					service.GetMonitor().RecordRedisError()
				}
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	}
}

// AdminOnly 管理员角色校验，必须挂在 AuthMiddleware 之后
func AdminOnly() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString("role") != user.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin role required"})
			return
		}
		ctx.Next()
	}
}

// currentUserID 取当前登录用户 ID
func currentUserID(ctx iris.Context) int64 {
	id, _ := ctx.Values().GetInt64("user_id")
	return id
}

// isAdmin 当前请求是否来自管理员
func isAdmin(ctx iris.Context) bool {
	return ctx.Values().GetString("role") == user.RoleAdmin
}

// tokenCacheTTL 配置化的 claims 缓存时间
func tokenCacheTTL(cfg *config.JWTConfig) time.Duration {
	return time.Duration(cfg.TokenCacheTTLSeconds) * time.Second
}
