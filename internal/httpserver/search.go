package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) articleInfo(c *gin.Context) {
	brand := c.Query("brand")
	number := c.Query("number")
	if brand == "" || number == "" {
		badRequest(c, "brand and number are required")
		return
	}
	info, err := h.deps.SearchSvc.ArticleInfo(c.Request.Context(), currentUserID(c), brand, number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) searchBrands(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		badRequest(c, "number is required")
		return
	}
	brands, err := h.deps.SearchSvc.SearchBrands(c.Request.Context(), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

func (h *handlers) searchTips(c *gin.Context) {
	query := c.Query("number")
	if query == "" {
		badRequest(c, "number is required")
		return
	}
	tips, err := h.deps.SearchSvc.SearchTips(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tips": tips})
}

// findPrices resolves local offers for one brand+number in the caller's price
// list. Offers invisible there are omitted from the response.
func (h *handlers) findPrices(c *gin.Context) {
	brand := c.Query("brand")
	number := c.Query("number")
	if brand == "" || number == "" {
		badRequest(c, "brand and number are required")
		return
	}
	groups, err := h.deps.SearchSvc.FindInPriceList(c.Request.Context(), currentUserID(c), brand, number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": groups})
}
