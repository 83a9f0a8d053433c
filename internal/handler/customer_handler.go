package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/common/response"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	service *application.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *application.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers all customer routes.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/api/v1/customers")
	{
		customers.POST("", h.RegisterCustomer)
		customers.GET("", h.ListCustomers)
	}
}

// RegisterCustomer handles POST /api/v1/customers.
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	var req application.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result, "")
}

// ListCustomers handles GET /api/v1/customers?email=.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	result, err := h.service.ListCustomers(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
