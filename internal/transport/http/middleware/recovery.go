package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-product-catalog/internal/transport/http/response"
	"go-product-catalog/pkg/apperr"
)

func SimpleRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					response.New(apperr.ErrInternal.Code, apperr.ErrInternal.Message, nil))
			}
		}()
		c.Next()
	}
}
