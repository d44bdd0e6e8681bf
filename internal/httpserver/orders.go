package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"rotazap-backend/internal/domain"
	ordersvc "rotazap-backend/internal/service/order"
)

type orderRequest struct {
	Items []ordersvc.LineInput `json:"items" binding:"required"`
}

type orderResponse struct {
	*domain.Order
	Number string `json:"number"`
}

func (h *handlers) validateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.deps.OrderSvc.Validate(c.Request.Context(), req.Items); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *handlers) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.deps.OrderSvc.Create(c.Request.Context(), currentUserID(c), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderResponse{Order: order, Number: order.Number()})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderResponse{Order: &orders[i], Number: orders[i].Number()})
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}
