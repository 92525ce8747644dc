package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-product-catalog/internal/core/auth"
	"go-product-catalog/internal/transport/http/response"
	"go-product-catalog/pkg/apperr"
)

const KeyClaims = "claims"

// AuthJWT 解析 Bearer token；requireRoles 非空时任一角色命中即放行
func AuthJWT(j *auth.JWTer, requireRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			response.AbortFail(c, apperr.ErrUnauthenticated)
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			response.AbortFail(c, apperr.ErrUnauthenticated)
			return
		}
		if !claims.HasAnyRole(requireRoles...) {
			response.AbortFail(c, apperr.ErrForbidden)
			return
		}
		c.Set(KeyClaims, claims)
		c.Set("userId", claims.UID)
		c.Next()
	}
}

// RequireRoles 路由级角色门，挂在 AuthJWT 之后
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(KeyClaims)
		if !ok {
			response.AbortFail(c, apperr.ErrUnauthenticated)
			return
		}
		claims, ok := v.(*auth.Claims)
		if !ok || !claims.HasAnyRole(roles...) {
			response.AbortFail(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}
