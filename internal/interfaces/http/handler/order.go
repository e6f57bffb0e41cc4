package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reconcileapp "github.com/ordertrack/backend/internal/application/reconcile"
)

// OrderHandler handles order API endpoints. All order mutations run through
// the reconciliation service so the ledger mirror stays in step.
type OrderHandler struct {
	BaseHandler
	service *reconcileapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *reconcileapp.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListOrders returns orders matching the query filters, newest first
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var filter reconcileapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetOrder returns a single order by ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// CreateOrder creates an order; a paid order also gets its ledger mirror.
// When the order saved but the mirror could not be written, the response is
// still 201 and carries the reconciliation warning.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req reconcileapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.CreatedWithWarning(c, result.Order, result.ReconciliationWarning)
}

// UpdateOrder updates an order and replaces its ledger mirror
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req reconcileapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithWarning(c, result.Order, result.ReconciliationWarning)
}

// DeleteOrder removes an order together with its auto-generated transaction
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, nil)
}

// GenerateSales mirrors every paid, not-yet-mirrored order in the date range
func (h *OrderHandler) GenerateSales(c *gin.Context) {
	var req reconcileapp.GenerateSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GenerateForPeriod(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CheckConsistency audits the order-ledger mirror invariant
func (h *OrderHandler) CheckConsistency(c *gin.Context) {
	report, err := h.service.CheckConsistency(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/consistency", h.CheckConsistency)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.POST("/generate-sales", h.GenerateSales)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}
