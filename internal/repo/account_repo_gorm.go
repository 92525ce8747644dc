package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
)

type AccountRepo struct{ db *gorm.DB }

func NewAccountRepo(db *gorm.DB) *AccountRepo { return &AccountRepo{db: db} }

var _ domain.AccountRepository = (*AccountRepo)(nil)

func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).First(&a, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// Create 唯一索引兜底并发注册：冲突翻译成业务错误
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if isDupKey(err) {
		return apperr.ErrUsernameTaken
	}
	return err
}

func (r *AccountRepo) Save(ctx context.Context, a *domain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.Account, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Account{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("username LIKE ?", "%"+s+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var as []domain.Account
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&as).Error; err != nil {
		return nil, 0, err
	}
	return as, total, nil
}
