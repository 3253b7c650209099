package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/application"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/response"
)

type createBookingRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	bookingDomain.RequestForm
}

type acceptRequest struct {
	Message string `json:"message" binding:"max=1000"`
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" binding:"max=2000"`
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
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	customerRole := middleware.RequireRole(auth.RoleCustomer)
	providerRole := middleware.RequireRole(auth.RoleProvider)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW, middleware.RequireRole(auth.RoleCustomer, auth.RoleProvider))
	{
		bookings.POST("", customerRole, h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", providerRole, h.AcceptBooking)
		bookings.POST("/:id/reject", providerRole, h.RejectBooking)
		bookings.POST("/:id/complete", providerRole, h.CompleteBooking)
		bookings.POST("/:id/feedback", customerRole, h.SubmitFeedback)
	}

	r.GET("/api/v1/vehicles/:id/quote", h.QuotePrice)
	r.GET("/api/v1/provider/stats", authMW, providerRole, h.ProviderStats)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req.VehicleID, req.RequestForm, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Providers see requests for
// their vehicles, customers see their own requests.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var status *bookingDomain.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := bookingDomain.ParseStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		status = &parsed
	}

	result, err := h.service.ListBookings(c.Request.Context(), actor, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AcceptBooking handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var body acceptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BindError(c, err)
			return
		}
	}

	result, err := h.service.AcceptBooking(c.Request.Context(), bookingID, actor, body.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var body rejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.RejectBooking(c.Request.Context(), bookingID, actor, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	result, err := h.service.CompleteBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SubmitFeedback handles POST /api/v1/bookings/:id/feedback.
func (h *BookingHandler) SubmitFeedback(c *gin.Context) {
	bookingID, actor, ok := bookingRequest(c)
	if !ok {
		return
	}

	var body feedbackRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.SubmitFeedback(c.Request.Context(), bookingID, actor, body.Rating, body.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// QuotePrice handles GET /api/v1/vehicles/:id/quote?duration=3.
func (h *BookingHandler) QuotePrice(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}
	duration, err := strconv.ParseFloat(c.Query("duration"), 64)
	if err != nil {
		response.BadRequest(c, "duration must be a number of hours")
		return
	}

	result, err := h.service.QuotePrice(c.Request.Context(), vehicleID, duration)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ProviderStats handles GET /api/v1/provider/stats.
func (h *BookingHandler) ProviderStats(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ProviderStats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// actorFrom maps the session claims to a booking actor.
func actorFrom(c *gin.Context) (bookingDomain.Actor, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return bookingDomain.Actor{}, false
	}
	var role bookingDomain.Role
	switch claims.Role {
	case auth.RoleCustomer:
		role = bookingDomain.RoleCustomer
	case auth.RoleProvider:
		role = bookingDomain.RoleProvider
	default:
		return bookingDomain.Actor{}, false
	}
	return bookingDomain.Actor{Role: role, ID: claims.UserID, Name: claims.Name, Email: claims.Email}, true
}

// bookingRequest parses the :id parameter and the caller, writing the error
// response itself when either is missing.
func bookingRequest(c *gin.Context) (uuid.UUID, bookingDomain.Actor, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, bookingDomain.Actor{}, false
	}
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, bookingDomain.Actor{}, false
	}
	return bookingID, actor, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
