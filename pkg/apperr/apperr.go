package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 业务错误：code 给机器，message 给人，status 给 HTTP 边界
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// Is 按 code 判等，方便 errors.Is 比较哨兵错误
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// WithMessage 同 code 换一条 message（锁定剩余分钟数之类的上下文）
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Status: e.Status}
}

// 认证相关
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "Invalid username or password.", http.StatusUnauthorized)
	ErrAccountLocked      = New("ACCOUNT_LOCKED", "Account temporarily locked due to multiple failed login attempts", http.StatusLocked)
	ErrAccountInactive    = New("AUTH_ACCOUNT_INACTIVE", "Account is inactive. Please contact administrator.", http.StatusForbidden)
	ErrUsernameTaken      = New("AUTH_USERNAME_ALREADY_EXISTS", "Username already taken.", http.StatusConflict)
	ErrUnauthenticated    = New("UNAUTHENTICATED", "Authentication required. Please log in.", http.StatusUnauthorized)
	ErrForbidden          = New("FORBIDDEN", "You do not have permission to perform this action.", http.StatusForbidden)
	ErrAccountNotFound    = New("ACCOUNT_NOT_FOUND", "Account not found", http.StatusNotFound)
)

// 商品相关
var (
	ErrProductNotFound  = New("PRODUCT_NOT_FOUND", "Product not found", http.StatusNotFound)
	ErrProductExists    = New("PRODUCT_ALREADY_EXISTS", "Code already exists", http.StatusConflict)
	ErrProductHasOrders = New("PRODUCT_HAS_ACTIVE_ORDERS", "Product cannot be deleted because active orders exists.", http.StatusConflict)
)

// 通用
var (
	ErrValidation = New("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrInternal   = New("INTERNAL_SERVER_ERROR", "An unexpected error occurred.", http.StatusInternalServerError)
)

// AsError 取出 *Error；不是业务错误则返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
