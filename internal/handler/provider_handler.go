package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/common/response"
)

type setAvailabilityBody struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// ProviderHandler handles HTTP requests for provider operations.
type ProviderHandler struct {
	service *application.ProviderService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(service *application.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// RegisterRoutes registers all provider routes.
func (h *ProviderHandler) RegisterRoutes(r *gin.RouterGroup) {
	providers := r.Group("/api/v1/providers")
	{
		providers.POST("", h.RegisterProvider)
		providers.GET("", h.ListProviders)
		providers.GET("/:id", h.GetProvider)
		providers.PATCH("/:id", h.SetAvailability)
	}
}

// RegisterProvider handles POST /api/v1/providers.
func (h *ProviderHandler) RegisterProvider(c *gin.Context) {
	var req application.RegisterProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RegisterProvider(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result, "")
}

// ListProviders handles GET /api/v1/providers?service_type=&available=&email=.
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	var q application.ListProvidersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListProviders(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProvider handles GET /api/v1/providers/:id.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider ID")
		return
	}

	result, err := h.service.GetProvider(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PATCH /api/v1/providers/:id.
func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider ID")
		return
	}

	var body setAvailabilityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetAvailability(c.Request.Context(), providerID, *body.IsAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
