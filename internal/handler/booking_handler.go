package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homefix/service-booking/internal/application"
	"github.com/homefix/service-booking/internal/common/response"
	eventDomain "github.com/homefix/service-booking/internal/domain/event"
)

// unknownActorID attributes changes whose caller sent no actor ID.
const unknownActorID = "unknown"

// updateBookingBody is the PATCH body: the fields to change plus who is asking.
type updateBookingBody struct {
	Status     *string `json:"status"`
	ProviderID *string `json:"provider_id"`
	Notes      *string `json:"notes"`
	ActorType  string  `json:"actor_type"`
	ActorID    string  `json:"actor_id"`
	IsAdmin    bool    `json:"is_admin"`
}

type assignProviderBody struct {
	ProviderID string `json:"provider_id"`
	ActorID    string `json:"actor_id"`
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.POST("/:id/assign", h.AssignProvider)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, message, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result, message)
}

// ListBookings handles GET /api/v1/bookings?customer_id=&provider_id=&status=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var q application.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBooking handles PATCH /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body updateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := eventDomain.Actor{Type: eventDomain.ActorSystem, ID: unknownActorID}
	if body.ActorType != "" {
		actorType, err := eventDomain.ParseActorType(body.ActorType)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		actor.Type = actorType
	}
	if id := strings.TrimSpace(body.ActorID); id != "" {
		actor.ID = id
	}

	req := application.UpdateBookingRequest{
		Status:     body.Status,
		ProviderID: body.ProviderID,
		Notes:      body.Notes,
	}
	result, err := h.service.UpdateBooking(c.Request.Context(), bookingID, req, actor, body.IsAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, result, application.MsgUpdated)
}

// AssignProvider handles POST /api/v1/bookings/:id/assign. An empty body auto-assigns.
func (h *BookingHandler) AssignProvider(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body assignProviderBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	result, message, err := h.service.AssignProvider(c.Request.Context(), bookingID, body.ProviderID, body.ActorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, result, message)
}
