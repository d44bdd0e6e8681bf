package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	basketsvc "rotazap-backend/internal/service/basket"
)

type basketActionRequest struct {
	Action string `json:"action" binding:"required"`

	SkuID      int64  `json:"skuId"`
	SupplierID int64  `json:"supplierId"`
	Qty        int    `json:"qty"`
	Hash       string `json:"hash"`
	Descr      string `json:"descr"`

	Items []basketsvc.CompareItem `json:"items"`
}

func (h *handlers) getBasket(c *gin.Context) {
	lines, err := h.deps.BasketSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines})
}

// basketAction multiplexes the basket mutations: add, remove (one unit),
// delete (whole line) and compare.
func (h *handlers) basketAction(c *gin.Context) {
	var req basketActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID := currentUserID(c)
	ctx := c.Request.Context()

	switch req.Action {
	case "add":
		line, err := h.deps.BasketSvc.Add(ctx, userID, basketsvc.AddInput{
			SkuID:      req.SkuID,
			SupplierID: req.SupplierID,
			Qty:        req.Qty,
			Hash:       req.Hash,
			Descr:      req.Descr,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, line)

	case "remove":
		line, err := h.deps.BasketSvc.Remove(ctx, userID, req.SkuID, req.SupplierID, req.Hash)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, line)

	case "delete":
		if err := h.deps.BasketSvc.Delete(ctx, userID, req.SkuID, req.SupplierID, req.Hash); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)

	case "compare":
		diffs, err := h.deps.BasketSvc.Compare(ctx, userID, req.Items)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"changed": diffs})

	default:
		badRequest(c, "unsupported action")
	}
}

func (h *handlers) clearBasket(c *gin.Context) {
	if err := h.deps.BasketSvc.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
