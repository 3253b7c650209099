package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// RegisterVehicleRequest is the request DTO for listing a vehicle.
type RegisterVehicleRequest struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category" binding:"required,oneof=car bike scooter"`
	HourlyRateCents int64  `json:"hourly_rate_cents" binding:"required,gt=0,lte=10000000"`
	Location        string `json:"location"`
	ImageURL        string `json:"image_url" binding:"omitempty,url"`
}

// VehicleDTO is the API response representation of a vehicle listing.
type VehicleDTO struct {
	ID              uuid.UUID     `json:"id"`
	Provider        vehicle.Owner `json:"provider"`
	Name            string        `json:"name"`
	Category        string        `json:"category"`
	HourlyRateCents int64         `json:"hourly_rate_cents"`
	Location        string        `json:"location,omitempty"`
	ImageURL        string        `json:"image_url,omitempty"`
	Available       bool          `json:"available"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// VehicleService implements the vehicle catalog use cases.
type VehicleService struct {
	catalog vehicle.Catalog
	logger  *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(catalog vehicle.Catalog, logger *zap.Logger) *VehicleService {
	return &VehicleService{catalog: catalog, logger: logger}
}

// RegisterVehicle lists a new vehicle for the given provider.
func (s *VehicleService) RegisterVehicle(ctx context.Context, owner vehicle.Owner, req RegisterVehicleRequest) (*VehicleDTO, error) {
	v, err := vehicle.NewVehicle(owner, req.Name, vehicle.Category(req.Category), req.HourlyRateCents, req.Location, req.ImageURL)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.Save(ctx, v); err != nil {
		s.logger.Error("failed to register vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to register vehicle: %w", err)
	}

	s.logger.Info("vehicle listed",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("provider_id", owner.ID.String()),
	)
	result := toVehicleDTO(v)
	return &result, nil
}

// ListVehicles returns listings, optionally narrowed by category, provider
// and availability.
func (s *VehicleService) ListVehicles(ctx context.Context, filter vehicle.Filter) ([]VehicleDTO, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid vehicle category: %s", *filter.Category))
	}
	vehicles, err := s.catalog.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// GetVehicle returns a single listing.
func (s *VehicleService) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	v, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// SetAvailability lets the owning provider open or close a listing to new
// requests. Existing bookings are unaffected.
func (s *VehicleService) SetAvailability(ctx context.Context, providerID, vehicleID uuid.UUID, available bool) (*VehicleDTO, error) {
	v, err := s.catalog.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(providerID) {
		return nil, domain.NewForbiddenError("you do not own this vehicle")
	}

	before := v.Version()
	v.SetAvailability(available)
	if v.Version() != before {
		if err := s.catalog.Update(ctx, v); err != nil {
			return nil, err
		}
		s.logger.Info("vehicle availability changed",
			zap.String("vehicle_id", v.ID().String()),
			zap.Bool("available", available),
		)
	}

	result := toVehicleDTO(v)
	return &result, nil
}

func toVehicleDTO(v *vehicle.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:              v.ID(),
		Provider:        v.Owner(),
		Name:            v.Name(),
		Category:        string(v.Category()),
		HourlyRateCents: v.HourlyRateCents(),
		Location:        v.Location(),
		ImageURL:        v.ImageURL(),
		Available:       v.IsAvailable(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}
}
