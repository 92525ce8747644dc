package handler

import (
	"github.com/gin-gonic/gin"

	"go-product-catalog/internal/domain"
	"go-product-catalog/internal/service"
	"go-product-catalog/internal/transport/http/response"
	"go-product-catalog/pkg/apperr"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// MountAPI 登录/注册都是公开路由
func (h *AuthHandler) MountAPI(pub, _ *gin.RouterGroup) {
	g := pub.Group("/auths")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
}

func (h *AuthHandler) login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindFail(c, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "AUTH_LOGIN_SUCCESS", "Login successful.", res)
}

func (h *AuthHandler) register(c *gin.Context) {
	var in struct {
		Username string   `json:"username" binding:"required,min=3,max=50"`
		Password string   `json:"password" binding:"required,min=8,max=100"`
		Roles    []string `json:"roles"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindFail(c, err)
		return
	}
	for _, r := range in.Roles {
		if !domain.ValidRole(r) {
			response.Fail(c, apperr.ErrValidation.WithMessage("invalid role: %s", r))
			return
		}
	}
	res, err := h.svc.Register(c.Request.Context(), in.Username, in.Password, in.Roles)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "USER_CREATED", "User created successfully.", res)
}
