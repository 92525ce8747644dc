package domain

import (
	"context"
	"time"
)

// 角色集合里的取值（JSON 数组存库）
const (
	RoleAdmin        = "ADMIN"
	RoleUser         = "USER"
	RoleProductRead  = "PRODUCT_READ"
	RoleProductWrite = "PRODUCT_WRITE"
)

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleUser, RoleProductRead, RoleProductWrite:
		return true
	}
	return false
}

type Account struct {
	ID           string   `gorm:"primaryKey;size:32" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	Roles        []string `gorm:"serializer:json;type:json" json:"roles"`

	// 锁定簿记：AccountLockedUntil 为 nil 即未锁；非 nil 也要和当前时间比
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	AccountLockedUntil  *time.Time `json:"-"`
	IsActive            bool       `gorm:"not null;default:false" json:"isActive"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string { return "app_users" }

// Locked 锁定时间存在且尚未过期才算锁着
func (a *Account) Locked(now time.Time) bool {
	return a.AccountLockedUntil != nil && now.Before(*a.AccountLockedUntil)
}

type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error) // 不存在返回 nil, nil
	FindByID(ctx context.Context, id string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
	List(ctx context.Context, q string, offset, limit int) ([]Account, int64, error)
}
