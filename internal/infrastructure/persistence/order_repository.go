package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrack/backend/internal/domain/order"
	"github.com/ordertrack/backend/internal/domain/shared"
	"github.com/ordertrack/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID. Returns (nil, nil) when no row exists.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all orders matching the filter, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("date DESC, id DESC").Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindByDateRange finds orders whose date falls in [from, to] inclusive
func (r *GormOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date DESC, id DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an order; returns shared.ErrNotFound if no row matched
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter order.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(customer_name) LIKE LOWER(?) OR LOWER(product_service) LIKE LOWER(?)",
			pattern, pattern)
	}
	if filter.PaymentReceived != nil {
		query = query.Where("payment_received = ?", *filter.PaymentReceived)
	}
	if filter.DeliveryStatus != nil {
		query = query.Where("delivery_status = ?", *filter.DeliveryStatus)
	}
	if filter.ProductService != nil {
		query = query.Where("product_service = ?", *filter.ProductService)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

// applyPagination adds offset/limit when a page size is set; a zero page
// size means no pagination.
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

var _ order.Repository = (*GormOrderRepository)(nil)
