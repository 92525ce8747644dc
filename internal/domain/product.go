package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyTRY = "TRY"
)

func ValidCurrency(c string) bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyTRY:
		return true
	}
	return false
}

type Product struct {
	InternalID string `gorm:"primaryKey;size:32" json:"-"`
	// 对外 ID 一经分配不再变化
	ExternalID  string          `gorm:"uniqueIndex;size:20;not null" json:"id"`
	Code        string          `gorm:"uniqueIndex;size:30;not null" json:"code"`
	Name        string          `gorm:"size:50" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"price"`
	Currency    string          `gorm:"size:10;not null" json:"currency"`
	Status      string          `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// ProductQuery 列表查询条件；Page 从 0 开始
type ProductQuery struct {
	Q      string
	Status string
	Page   int
	Size   int
	Desc   bool
}

type ProductRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByCodeExcluding(ctx context.Context, code, externalID string) (bool, error)
	// NextSequence 必须来自原子自增源，断不可用行数/最大值推算
	NextSequence(ctx context.Context) (int64, error)
	FindByExternalID(ctx context.Context, id string) (*Product, error) // 不存在返回 nil, nil
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, p *Product) error
	List(ctx context.Context, q ProductQuery) ([]Product, int64, error)
}
