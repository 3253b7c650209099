package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/config"
)

// NewRedisClient builds a client from the shared redis settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// VehicleCache is a read-through Redis cache in front of a vehicle.Catalog.
// Redis failures degrade to the underlying catalog.
type VehicleCache struct {
	next   vehicle.Catalog
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewVehicleCache wraps next with a cache whose entries expire after ttl.
func NewVehicleCache(next vehicle.Catalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *VehicleCache {
	return &VehicleCache{next: next, client: client, ttl: ttl, logger: logger}
}

type vehicleEntry struct {
	ID              uuid.UUID        `json:"id"`
	Owner           vehicle.Owner    `json:"owner"`
	Name            string           `json:"name"`
	Category        vehicle.Category `json:"category"`
	HourlyRateCents int64            `json:"hourly_rate_cents"`
	Location        string           `json:"location"`
	ImageURL        string           `json:"image_url"`
	Available       bool             `json:"available"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (c *VehicleCache) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	data, err := c.client.Get(ctx, vehicleKey(id)).Bytes()
	switch {
	case err == nil:
		var entry vehicleEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.toVehicle(), nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("vehicle_id", id.String()))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("vehicle cache read failed", zap.String("vehicle_id", id.String()), zap.Error(err))
	}

	v, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, v)
	return v, nil
}

// List is not cached; availability filters make entries short-lived.
func (c *VehicleCache) List(ctx context.Context, filter vehicle.Filter) ([]*vehicle.Vehicle, error) {
	return c.next.List(ctx, filter)
}

func (c *VehicleCache) Save(ctx context.Context, v *vehicle.Vehicle) error {
	if err := c.next.Save(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID())
	return nil
}

func (c *VehicleCache) Update(ctx context.Context, v *vehicle.Vehicle) error {
	if err := c.next.Update(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID())
	return nil
}

func (c *VehicleCache) store(ctx context.Context, v *vehicle.Vehicle) {
	payload, err := json.Marshal(toEntry(v))
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, vehicleKey(v.ID()), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("vehicle cache write failed", zap.String("vehicle_id", v.ID().String()), zap.Error(err))
	}
}

func (c *VehicleCache) invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, vehicleKey(id)).Err(); err != nil {
		c.logger.Warn("vehicle cache invalidation failed", zap.String("vehicle_id", id.String()), zap.Error(err))
	}
}

func toEntry(v *vehicle.Vehicle) vehicleEntry {
	return vehicleEntry{
		ID:              v.ID(),
		Owner:           v.Owner(),
		Name:            v.Name(),
		Category:        v.Category(),
		HourlyRateCents: v.HourlyRateCents(),
		Location:        v.Location(),
		ImageURL:        v.ImageURL(),
		Available:       v.IsAvailable(),
		Version:         v.Version(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}
}

func (e vehicleEntry) toVehicle() *vehicle.Vehicle {
	return vehicle.Reconstruct(
		e.ID, e.Owner, e.Name, e.Category, e.HourlyRateCents,
		e.Location, e.ImageURL, e.Available, e.Version,
		e.CreatedAt, e.UpdatedAt,
	)
}

func vehicleKey(id uuid.UUID) string {
	return fmt.Sprintf("cache:vehicle:%s", id)
}
