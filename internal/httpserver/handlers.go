package httpserver

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"rotazap-backend/internal/domain"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// fail responds with the mapped status and logs errors that are not part of
// the domain vocabulary.
func (h *handlers) fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var terr *domain.TransitionError
	known := errors.As(err, &verr) || errors.As(err, &terr) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyExists)
	if !known {
		h.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	respondError(c, err)
}
