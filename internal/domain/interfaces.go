package domain

import (
	"context"

	"storecrew/internal/models"
)

// Store is the booking record persistence contract implemented by
// internal/database.
type Store interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	SearchBookings(ctx context.Context, filter models.SearchFilter) ([]*models.Booking, error)
	CountBookings(ctx context.Context, filter models.SearchFilter) (int, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	UpdateBookingAdminNote(ctx context.Context, id int64, note string) error
	UpdateBookingContact(ctx context.Context, id int64, name, email, phone string) error
}

// ProgressRepository keeps partially filled intake forms between steps.
type ProgressRepository interface {
	GetProgress(ctx context.Context, token string) (*models.IntakeProgress, error)
	SetProgress(ctx context.Context, progress *models.IntakeProgress) error
	ClearProgress(ctx context.Context, token string) error
}

// Notifier announces a freshly created booking to staff. Implementations
// must not fail the intake flow.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking)
}

// SyncEnqueuer schedules spreadsheet sync work for a booking.
type SyncEnqueuer interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatusUpdate(ctx context.Context, bookingID int64, status string) error
}
