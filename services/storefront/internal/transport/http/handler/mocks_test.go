package handler

import (
	"context"
	"io"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, id, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, input *domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, input)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) AdjustStock(ctx context.Context, id uuid.UUID, adjustment int) (int, error) {
	args := m.Called(ctx, id, adjustment)
	return args.Int(0), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Place(ctx context.Context, input *domain.PlaceOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderService) ListMine(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderService) Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, id uuid.UUID, input *domain.UpdateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, id, input)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCategoryService struct {
	mock.Mock
}

func (m *mockCategoryService) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if c := args.Get(0); c != nil {
		return c.(*domain.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) Get(ctx context.Context) (domain.SiteSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SiteSettings), args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(domain.SiteSettings), args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	args := m.Called(ctx, filename, file)
	return args.String(0), args.Error(1)
}
