package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-product-catalog/internal/core/cache"
	"go-product-catalog/internal/domain"
	"go-product-catalog/internal/service"
	"go-product-catalog/internal/transport/http/middleware"
	"go-product-catalog/internal/transport/http/response"
	"go-product-catalog/pkg/apperr"
)

type ProductHandler struct {
	svc      *service.ProductService
	cache    *cache.Cache // 可为 nil（未配 redis）
	cacheTTL time.Duration
}

func NewProductHandler(svc *service.ProductService, c *cache.Cache, cacheTTL time.Duration) *ProductHandler {
	return &ProductHandler{svc: svc, cache: c, cacheTTL: cacheTTL}
}

// MountAPI 角色矩阵：读 ADMIN/PRODUCT_READ，改/删 ADMIN/PRODUCT_WRITE，
// 创建额外放行 PRODUCT_READ，列表只要登录
func (h *ProductHandler) MountAPI(_, authed *gin.RouterGroup) {
	g := authed.Group("/products")
	g.GET("", h.list)
	g.POST("", middleware.RequireRoles(domain.RoleAdmin, domain.RoleProductWrite, domain.RoleProductRead), h.create)
	g.GET("/:id", middleware.RequireRoles(domain.RoleAdmin, domain.RoleProductRead), h.get)
	g.PUT("/:id", middleware.RequireRoles(domain.RoleAdmin, domain.RoleProductWrite), h.update)
	g.PATCH("/:id", middleware.RequireRoles(domain.RoleAdmin, domain.RoleProductWrite), h.partialUpdate)
	g.DELETE("/:id", middleware.RequireRoles(domain.RoleAdmin, domain.RoleProductWrite), h.remove)
}

type productReq struct {
	Code        string          `json:"code" binding:"required,min=3,max=30"`
	Name        string          `json:"name" binding:"omitempty,max=50"`
	Description string          `json:"description" binding:"required,min=5,max=500"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency" binding:"required"`
	Status      string          `json:"status" binding:"required"`
}

func (r *productReq) toInput() (service.ProductInput, error) {
	if r.Price.LessThan(decimal.NewFromFloat(0.01)) {
		return service.ProductInput{}, apperr.ErrValidation.WithMessage("price must be at least 0.01")
	}
	if r.Price.Exponent() < -2 {
		return service.ProductInput{}, apperr.ErrValidation.WithMessage("price allows at most 2 fraction digits")
	}
	if !domain.ValidCurrency(r.Currency) {
		return service.ProductInput{}, apperr.ErrValidation.WithMessage("invalid currency: %s", r.Currency)
	}
	if !domain.ValidStatus(r.Status) {
		return service.ProductInput{}, apperr.ErrValidation.WithMessage("invalid status: %s", r.Status)
	}
	return service.ProductInput{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Status:      r.Status,
	}, nil
}

func productCacheKey(id string) string { return "product:" + id }

func (h *ProductHandler) create(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFail(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.Fail(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "PRODUCT_CREATED", "Product created successfully", p)
}

func (h *ProductHandler) get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if h.cache == nil {
		p, err := h.svc.GetByID(ctx, id)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, "PRODUCT_FOUND", "Product retrieved successfully", p)
		return
	}

	// 读多写少，短 TTL 读穿缓存；写路径统一 invalidate
	p, err := cache.GetOrLoadJSON[domain.Product](h.cache, ctx, productCacheKey(id), h.cacheTTL,
		func(ctx context.Context) (*domain.Product, error) {
			return h.svc.GetByID(ctx, id)
		})
	if err != nil {
		response.Fail(c, err)
		return
	}
	if p == nil {
		response.Fail(c, apperr.ErrProductNotFound)
		return
	}
	response.OK(c, "PRODUCT_FOUND", "Product retrieved successfully", p)
}

func (h *ProductHandler) update(c *gin.Context) {
	id := c.Param("id")
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFail(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.Fail(c, err)
		return
	}
	p, err := h.svc.UpdateByID(c.Request.Context(), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.invalidate(c, id)
	response.OK(c, "PRODUCT_UPDATED", "Product updated successfully", p)
}

func (h *ProductHandler) partialUpdate(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		Price  *decimal.Decimal `json:"price"`
		Status *string          `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFail(c, err)
		return
	}
	if req.Price != nil && req.Price.LessThan(decimal.NewFromFloat(0.01)) {
		response.Fail(c, apperr.ErrValidation.WithMessage("price must be at least 0.01"))
		return
	}
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		response.Fail(c, apperr.ErrValidation.WithMessage("invalid status: %s", *req.Status))
		return
	}
	p, err := h.svc.PartialUpdateByID(c.Request.Context(), id, service.ProductPatch{
		Price:  req.Price,
		Status: req.Status,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.invalidate(c, id)
	response.OK(c, "PRODUCT_UPDATED", "Product updated successfully", p)
}

func (h *ProductHandler) remove(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteByID(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	h.invalidate(c, id)
	response.OK(c, "SUCCESS", "Product deleted successfully", nil)
}

func (h *ProductHandler) list(c *gin.Context) {
	var in struct {
		Q         string `form:"q"`
		Status    string `form:"status"`
		Page      int    `form:"page,default=0"`
		Size      int    `form:"size,default=20"`
		Direction string `form:"direction,default=ASC"`
	}
	if err := c.ShouldBindQuery(&in); err != nil {
		response.BindFail(c, err)
		return
	}
	if in.Page < 0 {
		in.Page = 0
	}
	if in.Size <= 0 || in.Size > 100 {
		in.Size = 20
	}
	if in.Status != "" && !domain.ValidStatus(in.Status) {
		response.Fail(c, apperr.ErrValidation.WithMessage("invalid status: %s", in.Status))
		return
	}
	dir := strings.ToUpper(in.Direction)
	if dir != "ASC" && dir != "DESC" {
		response.Fail(c, apperr.ErrValidation.WithMessage("invalid direction: %s", in.Direction))
		return
	}

	page, err := h.svc.List(c.Request.Context(), domain.ProductQuery{
		Q:      in.Q,
		Status: in.Status,
		Page:   in.Page,
		Size:   in.Size,
		Desc:   dir == "DESC",
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "PRODUCTS_LISTED", "Products retrieved successfully", page)
}

func (h *ProductHandler) invalidate(c *gin.Context, id string) {
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), productCacheKey(id))
	}
}
