package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"rotazap-backend/internal/domain"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors become a
// 500 without leaking their contents.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "validation failed",
			"violations": verr.Violations,
		})
		return
	}

	var terr *domain.TransitionError
	if errors.As(err, &terr) {
		c.JSON(http.StatusConflict, gin.H{
			"message": terr.Error(),
			"from":    terr.From,
			"to":      terr.To,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
