package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/application"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/response"
)

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// VehicleHandler handles HTTP requests for the vehicle catalog.
type VehicleHandler struct {
	service *application.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *application.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers the catalog routes. Browsing is public, listing
// management needs a provider token.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	providerRole := middleware.RequireRole(auth.RoleProvider)

	vehicles := r.Group("/api/v1/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.POST("", authMW, providerRole, h.RegisterVehicle)
		vehicles.PATCH("/:id/availability", authMW, providerRole, h.SetAvailability)
	}
}

// RegisterVehicle handles POST /api/v1/vehicles.
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	owner := vehicle.Owner{ID: claims.UserID, Name: claims.Name, Email: claims.Email}
	result, err := h.service.RegisterVehicle(c.Request.Context(), owner, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListVehicles handles GET /api/v1/vehicles?category=car&available=true&provider_id=.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	var filter vehicle.Filter
	if raw := c.Query("category"); raw != "" {
		category := vehicle.Category(raw)
		filter.Category = &category
	}
	if raw := c.Query("provider_id"); raw != "" {
		providerID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid provider ID")
			return
		}
		filter.ProviderID = &providerID
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "available must be true or false")
			return
		}
		filter.AvailableOnly = available
	}

	result, err := h.service.ListVehicles(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetVehicle handles GET /api/v1/vehicles/:id.
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	result, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PATCH /api/v1/vehicles/:id/availability.
func (h *VehicleHandler) SetAvailability(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.SetAvailability(c.Request.Context(), providerID, vehicleID, *req.Available)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
