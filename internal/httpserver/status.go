package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	statussvc "rotazap-backend/internal/service/orderstatus"
)

func (h *handlers) listStatuses(c *gin.Context) {
	statuses, err := h.deps.StatusSvc.Statuses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

func (h *handlers) getStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	status, err := h.deps.StatusSvc.Status(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type createStatusRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *handlers) createStatus(c *gin.Context) {
	var req createStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	status, err := h.deps.StatusSvc.CreateStatus(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

type applyStatusRequest struct {
	OrderLineID int64      `json:"orderLineId" binding:"required"`
	StatusID    int64      `json:"orderStatusId" binding:"required"`
	Qty         int        `json:"qty"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (h *handlers) applyStatus(c *gin.Context) {
	var req applyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	ev, err := h.deps.StatusSvc.Apply(c.Request.Context(), statussvc.ApplyInput{
		OrderLineID: req.OrderLineID,
		StatusID:    req.StatusID,
		Qty:         req.Qty,
		At:          req.CreatedAt,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *handlers) statusHistory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	events, err := h.deps.StatusSvc.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

func (h *handlers) statusTimeline(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	steps, err := h.deps.StatusSvc.Timeline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": steps})
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
