package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber       string          `gorm:"uniqueIndex;not null;size:20"`
	VehicleID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	VehicleName         string          `gorm:"not null;size:200"`
	VehicleCategory     string          `gorm:"not null;size:20"`
	HourlyRateCents     int64           `gorm:"not null"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProviderID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Customer            json.RawMessage `gorm:"type:jsonb;not null"`
	Provider            json.RawMessage `gorm:"type:jsonb;not null"`
	Status              string          `gorm:"not null;size:30;index"`
	PickupLocation      string          `gorm:"not null;size:500"`
	DropoffLocation     string          `gorm:"not null;size:500"`
	PickupAt            time.Time       `gorm:"not null"`
	DurationHours       int             `gorm:"not null"`
	SpecialRequest      string          `gorm:"size:1000"`
	PriceCents          int64           `gorm:"not null"`
	Currency            string          `gorm:"not null;size:3;default:'USD'"`
	ProviderMessage     string          `gorm:"size:1000"`
	RejectionReason     string          `gorm:"size:1000"`
	FeedbackRating      *int            `gorm:""`
	FeedbackComment     string          `gorm:"size:2000"`
	FeedbackSubmittedAt *time.Time      `gorm:""`
	AcceptedAt          *time.Time      `gorm:""`
	RejectedAt          *time.Time      `gorm:""`
	CompletedAt         *time.Time      `gorm:""`
	Version             int64           `gorm:"not null;default:1"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingJournal writes committed bookings to PostgreSQL and reads them
// back on startup.
type GormBookingJournal struct {
	db *gorm.DB
}

// NewGormBookingJournal creates a new GormBookingJournal.
func NewGormBookingJournal(db *gorm.DB) *GormBookingJournal {
	return &GormBookingJournal{db: db}
}

// Record inserts a booking at version 1 and otherwise updates it with
// optimistic locking against the previous version.
func (r *GormBookingJournal) Record(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if bk.Version() <= 1 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":                model.Status,
			"provider_message":      model.ProviderMessage,
			"rejection_reason":      model.RejectionReason,
			"feedback_rating":       model.FeedbackRating,
			"feedback_comment":      model.FeedbackComment,
			"feedback_submitted_at": model.FeedbackSubmittedAt,
			"accepted_at":           model.AcceptedAt,
			"rejected_at":           model.RejectedAt,
			"completed_at":          model.CompletedAt,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// LoadAll returns every booking, oldest first.
func (r *GormBookingJournal) LoadAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingJournal) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	customerJSON, err := json.Marshal(bk.Customer())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer: %w", err)
	}
	providerJSON, err := json.Marshal(bk.Provider())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider: %w", err)
	}

	snapshot := bk.Vehicle()
	model := &BookingModel{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		VehicleID:       snapshot.ID,
		VehicleName:     snapshot.Name,
		VehicleCategory: string(snapshot.Category),
		HourlyRateCents: snapshot.HourlyRateCents,
		CustomerID:      bk.Customer().ID,
		ProviderID:      bk.Provider().ID,
		Customer:        customerJSON,
		Provider:        providerJSON,
		Status:          bk.Status().String(),
		PickupLocation:  bk.PickupLocation(),
		DropoffLocation: bk.DropoffLocation(),
		PickupAt:        bk.PickupAt(),
		DurationHours:   bk.DurationHours(),
		SpecialRequest:  bk.SpecialRequest(),
		PriceCents:      bk.PriceCents(),
		Currency:        bk.Currency(),
		ProviderMessage: bk.ProviderMessage(),
		RejectionReason: bk.RejectionReason(),
		AcceptedAt:      bk.AcceptedAt(),
		RejectedAt:      bk.RejectedAt(),
		CompletedAt:     bk.CompletedAt(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	if fb := bk.Feedback(); fb != nil {
		rating := fb.Rating
		submitted := fb.SubmittedAt
		model.FeedbackRating = &rating
		model.FeedbackComment = fb.Comment
		model.FeedbackSubmittedAt = &submitted
	}
	return model, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var customer, provider bookingDomain.Party
	if err := json.Unmarshal(m.Customer, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(m.Provider, &provider); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider: %w", err)
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var feedback *bookingDomain.Feedback
	if m.FeedbackRating != nil {
		feedback = &bookingDomain.Feedback{
			Rating:  *m.FeedbackRating,
			Comment: m.FeedbackComment,
		}
		if m.FeedbackSubmittedAt != nil {
			feedback.SubmittedAt = *m.FeedbackSubmittedAt
		}
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		bookingDomain.VehicleSnapshot{
			ID:              m.VehicleID,
			Name:            m.VehicleName,
			Category:        vehicle.Category(m.VehicleCategory),
			HourlyRateCents: m.HourlyRateCents,
		},
		customer,
		provider,
		status,
		m.PickupLocation,
		m.DropoffLocation,
		m.PickupAt,
		m.DurationHours,
		m.SpecialRequest,
		m.PriceCents,
		m.Currency,
		m.ProviderMessage,
		m.RejectionReason,
		feedback,
		m.AcceptedAt,
		m.RejectedAt,
		m.CompletedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
