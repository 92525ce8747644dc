package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
)

// ProductSequence 对外 ID 的自增计数器；失败的创建会留下空洞，允许
type ProductSequence struct {
	Name  string `gorm:"primaryKey;size:30"`
	Value int64  `gorm:"not null"`
}

func (ProductSequence) TableName() string { return "product_sequences" }

const productSeqName = "product"

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

var _ domain.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *ProductRepo) ExistsByCodeExcluding(ctx context.Context, code, externalID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("code = ? AND external_id <> ?", code, externalID).Count(&n).Error
	return n > 0, err
}

// NextSequence 行锁内自增，绝不用行数/最大值推算
func (r *ProductRepo) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ProductSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "name = ?", productSeqName).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = ProductSequence{Name: productSeqName, Value: 1}
			if e := tx.Create(&row).Error; e != nil {
				return e
			}
			next = 1
			return nil
		}
		if err != nil {
			return err
		}
		row.Value++
		if e := tx.Save(&row).Error; e != nil {
			return e
		}
		next = row.Value
		return nil
	})
	return next, err
}

func (r *ProductRepo) FindByExternalID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "external_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isDupKey(err) {
		return apperr.ErrProductExists
	}
	return err
}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Save(p).Error
	if isDupKey(err) {
		return apperr.ErrProductExists
	}
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Delete(p).Error
}

func (r *ProductRepo) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Product{})
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at ASC"
	if q.Desc {
		order = "created_at DESC"
	}
	var ps []domain.Product
	if err := tx.Order(order).Offset(q.Page * q.Size).Limit(q.Size).Find(&ps).Error; err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}
