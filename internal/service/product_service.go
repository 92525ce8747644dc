package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
	"go-product-catalog/pkg/utils"
)

const (
	productIDPrefix = "prd_"
	productIDPad    = 4
)

// FormatExternalID prd_0001 这种定宽补零；序号超出宽度就自然变长，不算错
func FormatExternalID(seq int64) string {
	return fmt.Sprintf("%s%0*d", productIDPrefix, productIDPad, seq)
}

type ProductInput struct {
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
	Status      string
}

// ProductPatch 只动 price 和 status
type ProductPatch struct {
	Price  *decimal.Decimal
	Status *string
}

type ProductPage struct {
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
	Items      []domain.Product `json:"items"`
}

type ProductService struct {
	products domain.ProductRepository
	log      *zap.Logger
}

func NewProductService(products domain.ProductRepository, log *zap.Logger) *ProductService {
	return &ProductService{products: products, log: log}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	exists, err := s.products.ExistsByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrProductExists
	}

	seq, err := s.products.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		InternalID:  utils.NewID(),
		ExternalID:  FormatExternalID(seq),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Currency:    in.Currency,
		Status:      in.Status,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("external_id", p.ExternalID), zap.String("code", p.Code))
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByExternalID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrProductNotFound
	}
	return p, nil
}

// UpdateByID 整体替换 code/description/price/currency/status，name 不在此路径
func (s *ProductService) UpdateByID(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// code 唯一性检查要排除自己
	taken, err := s.products.ExistsByCodeExcluding(ctx, in.Code, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrProductExists
	}

	p.Code = in.Code
	p.Description = in.Description
	p.Price = in.Price
	p.Currency = in.Currency
	p.Status = in.Status
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) PartialUpdateByID(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteByID ACTIVE 状态视同有在途订单，禁止删除
func (s *ProductService) DeleteByID(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == domain.StatusActive {
		return apperr.ErrProductHasOrders
	}
	if err := s.products.Delete(ctx, p); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("external_id", id))
	return nil
}

func (s *ProductService) List(ctx context.Context, q domain.ProductQuery) (*ProductPage, error) {
	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	totalPages := 0
	if q.Size > 0 {
		totalPages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &ProductPage{
		Page:       q.Page,
		Size:       q.Size,
		TotalItems: total,
		TotalPages: totalPages,
		Items:      items,
	}, nil
}
