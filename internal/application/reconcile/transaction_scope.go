package reconcile

import (
	"context"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the order and ledger
// repositories. When a function is executed within a scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to both repositories within a transaction.
// Both share the same underlying database transaction.
type Repositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// LedgerRepo returns the transaction repository scoped to the current transaction
	LedgerRepo() ledger.Repository
}

// NoOpTransactionScope runs the function against the given repositories
// without a real transaction. Useful for tests.
type NoOpTransactionScope struct {
	orderRepo  order.Repository
	ledgerRepo ledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(orderRepo order.Repository, ledgerRepo ledger.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orderRepo: orderRepo, ledgerRepo: ledgerRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// LedgerRepo returns the transaction repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository {
	return s.ledgerRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
