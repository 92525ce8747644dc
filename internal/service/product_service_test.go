package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
)

// 内存版商品仓库 + 原子计数器
type fakeProducts struct {
	byExternalID map[string]*domain.Product
	seq          int64
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{byExternalID: map[string]*domain.Product{}}
}

func (f *fakeProducts) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range f.byExternalID {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) ExistsByCodeExcluding(_ context.Context, code, externalID string) (bool, error) {
	for _, p := range f.byExternalID {
		if p.Code == code && p.ExternalID != externalID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) NextSequence(_ context.Context) (int64, error) {
	f.seq++
	return f.seq, nil
}

func (f *fakeProducts) FindByExternalID(_ context.Context, id string) (*domain.Product, error) {
	return f.byExternalID[id], nil
}

func (f *fakeProducts) Create(ctx context.Context, p *domain.Product) error {
	if exists, _ := f.ExistsByCode(ctx, p.Code); exists {
		return apperr.ErrProductExists
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	f.byExternalID[p.ExternalID] = p
	return nil
}

func (f *fakeProducts) Save(_ context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()
	f.byExternalID[p.ExternalID] = p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, p *domain.Product) error {
	delete(f.byExternalID, p.ExternalID)
	return nil
}

func (f *fakeProducts) List(_ context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	var all []domain.Product
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	for _, p := range f.byExternalID {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Code), needle) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if q.Desc {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	total := int64(len(all))
	start := q.Page * q.Size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + q.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ domain.ProductRepository = (*fakeProducts)(nil)

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleInput(code string) ProductInput {
	return ProductInput{
		Code:        code,
		Name:        "Widget " + code,
		Description: "a widget called " + code,
		Price:       money("19.99"),
		Currency:    domain.CurrencyUSD,
		Status:      domain.StatusInactive,
	}
}

func newTestProductService() (*ProductService, *fakeProducts) {
	repo := newFakeProducts()
	return NewProductService(repo, zap.NewNop()), repo
}

func TestFormatExternalID(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "prd_0001"},
		{42, "prd_0042"},
		{999, "prd_0999"},
		{9999, "prd_9999"},
		// 超出补零宽度就自然变长
		{10000, "prd_10000"},
		{123456, "prd_123456"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatExternalID(c.seq))
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	p1, err := svc.Create(ctx, sampleInput("WID-001"))
	require.NoError(t, err)
	p2, err := svc.Create(ctx, sampleInput("WID-002"))
	require.NoError(t, err)

	assert.Equal(t, "prd_0001", p1.ExternalID)
	assert.Equal(t, "prd_0002", p2.ExternalID)
	assert.NotEqual(t, p1.InternalID, p2.InternalID)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	_, err := svc.Create(ctx, sampleInput("WID-001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, sampleInput("WID-001"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrProductExists))
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestProductService()

	_, err := svc.GetByID(context.Background(), "prd_9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrProductNotFound))
}

func TestUpdateByID(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	p1, err := svc.Create(ctx, sampleInput("WID-001"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleInput("WID-002"))
	require.NoError(t, err)

	// 改成自己原来的 code 不算冲突
	in := sampleInput("WID-001")
	in.Description = "updated description"
	in.Price = money("25.50")
	got, err := svc.UpdateByID(ctx, p1.ExternalID, in)
	require.NoError(t, err)
	assert.Equal(t, "updated description", got.Description)
	assert.True(t, got.Price.Equal(money("25.50")))
	// name 不在整体替换路径里
	assert.Equal(t, "Widget WID-001", got.Name)

	// 抢别人的 code 要报冲突
	in.Code = "WID-002"
	_, err = svc.UpdateByID(ctx, p1.ExternalID, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrProductExists))

	// 不存在的 id
	_, err = svc.UpdateByID(ctx, "prd_8888", sampleInput("WID-003"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrProductNotFound))
}

func TestPartialUpdateByID(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, sampleInput("WID-001"))
	require.NoError(t, err)

	price := money("9.99")
	status := domain.StatusActive
	got, err := svc.PartialUpdateByID(ctx, p.ExternalID, ProductPatch{Price: &price, Status: &status})
	require.NoError(t, err)

	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, domain.StatusActive, got.Status)
	// 其余字段原样
	assert.Equal(t, "WID-001", got.Code)
	assert.Equal(t, "Widget WID-001", got.Name)
	assert.Equal(t, domain.CurrencyUSD, got.Currency)

	// 只给 price 时 status 不动
	price2 := money("12.00")
	got, err = svc.PartialUpdateByID(ctx, p.ExternalID, ProductPatch{Price: &price2})
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price2))
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestDeleteByID(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	in := sampleInput("WID-001")
	in.Status = domain.StatusActive
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)

	// ACTIVE 状态禁止删除
	err = svc.DeleteByID(ctx, p.ExternalID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrProductHasOrders))

	status := domain.StatusInactive
	_, err = svc.PartialUpdateByID(ctx, p.ExternalID, ProductPatch{Status: &status})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByID(ctx, p.ExternalID))
	_, err = svc.GetByID(ctx, p.ExternalID)
	assert.True(t, errors.Is(err, apperr.ErrProductNotFound))
}

func TestListPaginationAndFilters(t *testing.T) {
	svc, repo := newTestProductService()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 25; i++ {
		in := sampleInput(fmt.Sprintf("WID-%03d", i))
		if i%2 == 0 {
			in.Status = domain.StatusActive
		}
		p, err := svc.Create(ctx, in)
		require.NoError(t, err)
		// 错开创建时间保证排序可断言
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, p))
	}

	// 25 条、页长 10 → 10/10/5，共 3 页
	page, err := svc.List(ctx, domain.ProductQuery{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, "WID-001", page.Items[0].Code) // 默认升序

	page, err = svc.List(ctx, domain.ProductQuery{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	// 降序第一条是最新创建的
	page, err = svc.List(ctx, domain.ProductQuery{Page: 0, Size: 10, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, "WID-025", page.Items[0].Code)

	// status 过滤
	page, err = svc.List(ctx, domain.ProductQuery{Status: domain.StatusActive, Page: 0, Size: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 12, page.TotalItems)
	for _, p := range page.Items {
		assert.Equal(t, domain.StatusActive, p.Status)
	}

	// q 大小写无关，name 或 code 命中
	page, err = svc.List(ctx, domain.ProductQuery{Q: "wid-007", Page: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalItems)
	assert.Equal(t, "WID-007", page.Items[0].Code)

	// 翻过头返回空页但总数不变
	page, err = svc.List(ctx, domain.ProductQuery{Page: 9, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.TotalItems)
	assert.Len(t, page.Items, 0)
}
