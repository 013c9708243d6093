package handlers

import (
	"errors"
	"net/http"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps a domain error to HTTP. Buyers only ever see
// coarse messages; raw provider codes stay in the server logs.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, domain.ErrOrderNotPayable),
		errors.Is(err, domain.ErrAlreadyTerminal),
		errors.Is(err, domain.ErrSweepInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "payment gateway unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
