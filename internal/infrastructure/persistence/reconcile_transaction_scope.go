package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/ordertrack/backend/internal/application/reconcile"
	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/order"
)

// GormTransactionScope implements reconcile.TransactionScope using GORM
// transactions. Every reconciliation entry point runs its order and ledger
// writes inside one database transaction, so a crash can not leave the two
// tables disagreeing.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. Both
// repositories handed to the function share the transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos reconcile.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transactionalRepositories{
			orderRepo:  NewGormOrderRepository(tx),
			ledgerRepo: NewGormTransactionRepository(tx),
		})
	})
}

type transactionalRepositories struct {
	orderRepo  order.Repository
	ledgerRepo ledger.Repository
}

func (r *transactionalRepositories) OrderRepo() order.Repository {
	return r.orderRepo
}

func (r *transactionalRepositories) LedgerRepo() ledger.Repository {
	return r.ledgerRepo
}

var _ reconcile.TransactionScope = (*GormTransactionScope)(nil)
var _ reconcile.Repositories = (*transactionalRepositories)(nil)
