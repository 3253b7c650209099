package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderName    string    `gorm:"type:varchar(200);not null"`
	ProviderEmail   string    `gorm:"type:varchar(200)"`
	Name            string    `gorm:"type:varchar(200);not null"`
	Category        string    `gorm:"type:varchar(20);not null;index"`
	HourlyRateCents int64     `gorm:"not null"`
	Location        string    `gorm:"type:varchar(500)"`
	ImageURL        string    `gorm:"type:text"`
	Available       bool      `gorm:"not null;default:true"`
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (VehicleModel) TableName() string { return "vehicles" }

// GormVehicleCatalog implements vehicle.Catalog using GORM.
type GormVehicleCatalog struct {
	db *gorm.DB
}

func NewGormVehicleCatalog(db *gorm.DB) *GormVehicleCatalog {
	return &GormVehicleCatalog{db: db}
}

func (r *GormVehicleCatalog) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, err
	}
	return toVehicleDomain(&model), nil
}

func (r *GormVehicleCatalog) List(ctx context.Context, filter vehicle.Filter) ([]*vehicle.Vehicle, error) {
	q := r.db.WithContext(ctx).Model(&VehicleModel{})
	if filter.Category != nil {
		q = q.Where("category = ?", string(*filter.Category))
	}
	if filter.ProviderID != nil {
		q = q.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.AvailableOnly {
		q = q.Where("available = ?", true)
	}

	var models []VehicleModel
	if err := q.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	vehicles := make([]*vehicle.Vehicle, len(models))
	for i := range models {
		vehicles[i] = toVehicleDomain(&models[i])
	}
	return vehicles, nil
}

func (r *GormVehicleCatalog) Save(ctx context.Context, v *vehicle.Vehicle) error {
	return r.db.WithContext(ctx).Create(toVehicleModel(v)).Error
}

func (r *GormVehicleCatalog) Update(ctx context.Context, v *vehicle.Vehicle) error {
	model := toVehicleModel(v)
	previousVersion := v.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"available":  model.Available,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toVehicleModel(v *vehicle.Vehicle) *VehicleModel {
	owner := v.Owner()
	return &VehicleModel{
		ID:              v.ID(),
		ProviderID:      owner.ID,
		ProviderName:    owner.Name,
		ProviderEmail:   owner.Email,
		Name:            v.Name(),
		Category:        string(v.Category()),
		HourlyRateCents: v.HourlyRateCents(),
		Location:        v.Location(),
		ImageURL:        v.ImageURL(),
		Available:       v.IsAvailable(),
		Version:         v.Version(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}
}

func toVehicleDomain(m *VehicleModel) *vehicle.Vehicle {
	return vehicle.Reconstruct(
		m.ID,
		vehicle.Owner{ID: m.ProviderID, Name: m.ProviderName, Email: m.ProviderEmail},
		m.Name, vehicle.Category(m.Category),
		m.HourlyRateCents,
		m.Location, m.ImageURL,
		m.Available,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
