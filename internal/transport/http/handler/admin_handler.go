package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"go-product-catalog/internal/domain"
	"go-product-catalog/internal/transport/http/response"
	"go-product-catalog/pkg/apperr"
)

// AccountAdminHandler 后台账号管理：列表 + 激活/停用（注册出来的账号默认未激活）
type AccountAdminHandler struct {
	accounts domain.AccountRepository
}

func NewAccountAdminHandler(accounts domain.AccountRepository) *AccountAdminHandler {
	return &AccountAdminHandler{accounts: accounts}
}

func (h *AccountAdminHandler) MountAdmin(admin *gin.RouterGroup) {
	g := admin.Group("/accounts")
	g.GET("", h.list)
	g.POST("/:id/activate", h.setActive(true))
	g.POST("/:id/deactivate", h.setActive(false))
}

func (h *AccountAdminHandler) list(c *gin.Context) {
	var in struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 username 模糊搜
	}
	if err := c.ShouldBindQuery(&in); err != nil {
		response.BindFail(c, err)
		return
	}
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}

	as, total, err := h.accounts.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	type row struct {
		ID                  string     `json:"id"`
		Username            string     `json:"username"`
		Roles               []string   `json:"roles"`
		IsActive            bool       `json:"isActive"`
		FailedLoginAttempts int        `json:"failedLoginAttempts"`
		AccountLockedUntil  *time.Time `json:"accountLockedUntil,omitempty"`
		CreatedAt           time.Time  `json:"createdAt"`
	}
	items := make([]row, 0, len(as))
	for _, a := range as {
		items = append(items, row{
			ID:                  a.ID,
			Username:            a.Username,
			Roles:               a.Roles,
			IsActive:            a.IsActive,
			FailedLoginAttempts: a.FailedLoginAttempts,
			AccountLockedUntil:  a.AccountLockedUntil,
			CreatedAt:           a.CreatedAt,
		})
	}
	response.OK(c, "ACCOUNTS_LISTED", "Accounts retrieved successfully", gin.H{
		"total": total, "items": items,
	})
}

func (h *AccountAdminHandler) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ctx := c.Request.Context()

		a, err := h.accounts.FindByID(ctx, id)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if a == nil {
			response.Fail(c, apperr.ErrAccountNotFound)
			return
		}
		a.IsActive = active
		if err := h.accounts.Save(ctx, a); err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, "ACCOUNT_UPDATED", "Account updated successfully", gin.H{
			"id": a.ID, "isActive": a.IsActive,
		})
	}
}
