package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-product-catalog/pkg/apperr"
)

type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope 统一响应壳：{status:{code,message}, data}
type Envelope struct {
	Status Status `json:"status"`
	Data   any    `json:"data"`
}

func New(code, message string, data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Status: Status{Code: code, Message: message}, Data: data}
}

func OK(c *gin.Context, code, message string, data any) {
	c.JSON(http.StatusOK, New(code, message, data))
}

func Created(c *gin.Context, code, message string, data any) {
	c.JSON(http.StatusCreated, New(code, message, data))
}

// Fail 按 apperr 映射 HTTP 状态；认不出的错误记到 gin 错误栈并回 500
func Fail(c *gin.Context, err error) {
	if e := apperr.AsError(err); e != nil {
		c.JSON(e.Status, New(e.Code, e.Message, nil))
		return
	}
	_ = c.Error(err) // AccessLog 会带 request id 打出来
	e := apperr.ErrInternal
	c.JSON(e.Status, New(e.Code, e.Message, nil))
}

// AbortFail 中间件用，终止后续 handler
func AbortFail(c *gin.Context, err error) {
	if e := apperr.AsError(err); e != nil {
		c.AbortWithStatusJSON(e.Status, New(e.Code, e.Message, nil))
		return
	}
	_ = c.Error(err)
	e := apperr.ErrInternal
	c.AbortWithStatusJSON(e.Status, New(e.Code, e.Message, nil))
}

// BindFail 请求体绑定/校验失败
func BindFail(c *gin.Context, err error) {
	msg := "Validation failed"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusBadRequest, New(apperr.ErrValidation.Code, msg, nil))
}
