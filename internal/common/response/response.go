package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homefix/service-booking/internal/common/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// SuccessWithMessage writes 200 with data and a human-readable outcome.
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes 201 with data and an optional message.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status. Anything else is recorded on the
// gin context for the logging middleware and answered with a generic 500.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		c.JSON(StatusFor(de.Code), Envelope{Success: false, Error: de.Message})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
}

// StatusFor returns the HTTP status of a domain error code.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound, domain.CodeNoAvailableProvider:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeDuplicateEntity:
		return http.StatusConflict
	case domain.CodeInvalidTransition, domain.CodeValidation, domain.CodeNoOp:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
