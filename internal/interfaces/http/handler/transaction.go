package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/ordertrack/backend/internal/application/ledger"
)

// TransactionHandler handles ledger API endpoints
type TransactionHandler struct {
	BaseHandler
	service *ledgerapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *ledgerapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// ListTransactions returns ledger entries matching the query filters
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var filter ledgerapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txns, total, err := h.service.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, txns, total, filter.Page, filter.PageSize)
}

// GetTransaction returns a single ledger entry by ID
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	t, err := h.service.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, t)
}

// CreateTransaction creates a manual ledger entry
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, t)
}

// UpdateTransaction updates a manual ledger entry. Auto-generated entries
// are rejected with 422; they change only through their owning order.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req ledgerapp.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, t)
}

// DeleteTransaction removes a ledger entry. Removing an auto-generated entry
// succeeds but the response flags the possible order-ledger inconsistency.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.service.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	txns := rg.Group("/transactions")
	{
		txns.GET("", h.ListTransactions)
		txns.GET("/:id", h.GetTransaction)
		txns.POST("", h.CreateTransaction)
		txns.PUT("/:id", h.UpdateTransaction)
		txns.DELETE("/:id", h.DeleteTransaction)
	}
}
