package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/repository"
)

func TestVehicleService_RegisterAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewVehicleService(repository.NewMemoryVehicleCatalog(), zap.NewNop())
	owner := vehicle.Owner{ID: uuid.New(), Name: "Rita"}

	car, err := svc.RegisterVehicle(ctx, owner, RegisterVehicleRequest{Name: "Red Car", Category: "car", HourlyRateCents: 4000})
	require.NoError(t, err)
	_, err = svc.RegisterVehicle(ctx, owner, RegisterVehicleRequest{Name: "Blue Bike", Category: "bike", HourlyRateCents: 800})
	require.NoError(t, err)

	cars := vehicle.CategoryCar
	listed, err := svc.ListVehicles(ctx, vehicle.Filter{Category: &cars})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, car.ID, listed[0].ID)

	bad := vehicle.Category("boat")
	_, err = svc.ListVehicles(ctx, vehicle.Filter{Category: &bad})
	assert.Error(t, err)
}

func TestVehicleService_SetAvailability(t *testing.T) {
	ctx := context.Background()
	svc := NewVehicleService(repository.NewMemoryVehicleCatalog(), zap.NewNop())
	owner := vehicle.Owner{ID: uuid.New(), Name: "Rita"}
	v, err := svc.RegisterVehicle(ctx, owner, RegisterVehicleRequest{Name: "Scooter", Category: "scooter", HourlyRateCents: 1200})
	require.NoError(t, err)

	_, err = svc.SetAvailability(ctx, uuid.New(), v.ID, false)
	var kinded domain.Kinded
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, domain.KindForbidden, kinded.Kind())

	updated, err := svc.SetAvailability(ctx, owner.ID, v.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Available)

	available, err := svc.ListVehicles(ctx, vehicle.Filter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, available)

	again, err := svc.SetAvailability(ctx, owner.ID, v.ID, false)
	require.NoError(t, err)
	assert.False(t, again.Available)
}

func TestVehicleService_RegisterVehicle_RateTooHigh(t *testing.T) {
	ctx := context.Background()
	catalog := repository.NewMemoryVehicleCatalog()
	svc := NewVehicleService(catalog, zap.NewNop())
	owner := vehicle.Owner{ID: uuid.New(), Name: "Rita"}

	_, err := svc.RegisterVehicle(ctx, owner, RegisterVehicleRequest{Name: "Jet", Category: "car", HourlyRateCents: 200_000_000_000_000_000})

	var kinded domain.Kinded
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, domain.KindValidation, kinded.Kind())
	listed, err := svc.ListVehicles(ctx, vehicle.Filter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
