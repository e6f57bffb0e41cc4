package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/shared"
	"github.com/ordertrack/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements ledger.Repository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID. Returns (nil, nil) when no row exists.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all transactions matching the filter, newest first
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter ledger.Filter) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("date DESC, id DESC").Find(&txModels).Error; err != nil {
		return nil, err
	}
	txns := make([]ledger.Transaction, len(txModels))
	for i := range txModels {
		txns[i] = *txModels[i].ToDomain()
	}
	return txns, nil
}

// FindByDateRange finds transactions whose date falls in [from, to] inclusive
func (r *GormTransactionRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date DESC, id DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	txns := make([]ledger.Transaction, len(txModels))
	for i := range txModels {
		txns[i] = *txModels[i].ToDomain()
	}
	return txns, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a transaction; returns shared.ErrNotFound if no row matched
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteAutoGeneratedByOrderID removes the auto-generated transaction
// referencing the given order. Succeeds quietly when nothing matches.
func (r *GormTransactionRepository) DeleteAutoGeneratedByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("provenance = ? AND order_id = ?", ledger.ProvenanceAutoGenerated, orderID).
		Delete(&models.TransactionModel{}).Error
}

// FindAutoGeneratedOrderIDs returns the set of order ids already referenced
// by an auto-generated transaction
func (r *GormTransactionRepository) FindAutoGeneratedOrderIDs(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("provenance = ? AND order_id IS NOT NULL", ledger.ProvenanceAutoGenerated).
		Distinct().
		Pluck("order_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

type periodTotalsRow struct {
	IncomePrimary    decimal.Decimal `gorm:"column:income_tzs"`
	IncomeSecondary  decimal.Decimal `gorm:"column:income_usd"`
	ExpensePrimary   decimal.Decimal `gorm:"column:expense_tzs"`
	ExpenseSecondary decimal.Decimal `gorm:"column:expense_usd"`
}

// SumByCategory sums the amount columns over [from, to] inclusive. Missing
// data sums to zero.
func (r *GormTransactionRepository) SumByCategory(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error) {
	var row periodTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select(
			"COALESCE(SUM(income_tzs), 0) AS income_tzs, "+
				"COALESCE(SUM(income_usd), 0) AS income_usd, "+
				"COALESCE(SUM(expense_tzs), 0) AS expense_tzs, "+
				"COALESCE(SUM(expense_usd), 0) AS expense_usd").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return ledger.PeriodTotals{}, err
	}
	return ledger.PeriodTotals{
		IncomePrimary:    row.IncomePrimary,
		IncomeSecondary:  row.IncomeSecondary,
		ExpensePrimary:   row.ExpensePrimary,
		ExpenseSecondary: row.ExpenseSecondary,
	}, nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(description) LIKE LOWER(?) OR LOWER(notes) LIKE LOWER(?)",
			pattern, pattern)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Provenance != nil {
		query = query.Where("provenance = ?", *filter.Provenance)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

var _ ledger.Repository = (*GormTransactionRepository)(nil)
