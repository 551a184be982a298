package handlers

import (
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
	"github.com/Conceptual-Machines/beatstoch-api/internal/models"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/Conceptual-Machines/beatstoch-api/internal/services"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, pattern.ErrInvalidParameter), errors.Is(err, pattern.ErrUnknownStyle):
		return http.StatusBadRequest
	case errors.Is(err, pattern.ErrTempoResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrPatternNotFound), errors.Is(err, services.ErrPersistenceDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := models.ErrorResponse{Error: err.Error()}

	var invalid *pattern.InvalidParameterError
	if errors.As(err, &invalid) {
		body.Field = invalid.Field
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", err, logger.WithContext(c))
		body.Error = "internal server error"
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
}
