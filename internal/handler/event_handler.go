package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/common/response"
)

// EventHandler serves the booking audit log.
type EventHandler struct {
	service *application.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service *application.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes registers the event routes.
func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/events", h.ListEvents)
}

// ListEvents handles GET /api/v1/events?booking_id=&event_type=&actor_type=&limit=.
func (h *EventHandler) ListEvents(c *gin.Context) {
	var q application.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListEvents(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
