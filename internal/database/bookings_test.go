package database

import (
	"context"
	"os"
	"testing"
	"time"

	"storecrew/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testBooking(name string) *models.Booking {
	return &models.Booking{
		Name:        name,
		Phone:       "03-1234-5678",
		ServiceType: "storefront_cleaning",
		Location:    "Shibuya",
		Options:     map[string]int{"photoreport": 1},
		Estimate: models.Estimate{
			Total:    16000,
			Currency: "JPY",
			Breakdown: []models.EstimateLine{
				{Label: "Storefront cleaning", Amount: 15000},
				{Label: "Photo report", Amount: 1000},
			},
		},
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking("Tanaka")
	err := db.CreateBooking(ctx, booking)
	require.NoError(t, err)
	require.NotZero(t, booking.ID)
	require.NotEmpty(t, booking.Reference)
	assert.Equal(t, models.StatusNew, booking.Status)
	assert.False(t, booking.CreatedAt.IsZero())

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Name, got.Name)
	assert.Equal(t, booking.Reference, got.Reference)
	assert.Equal(t, booking.Options, got.Options)
	assert.Equal(t, booking.Estimate.Total, got.Estimate.Total)
	require.Len(t, got.Estimate.Breakdown, 2)
	assert.Equal(t, int64(15000), got.Estimate.Breakdown[0].Amount)

	byRef, err := db.GetBookingByReference(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, byRef.ID)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetBookingByReference(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchBookingsNoFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Tanaka", "Suzuki", "Sato"} {
		require.NoError(t, db.CreateBooking(ctx, testBooking(name)))
	}

	bookings, err := db.SearchBookings(ctx, models.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, bookings, 3)

	// Newest first: equal created_at falls back to id DESC.
	assert.Equal(t, "Sato", bookings[0].Name)
	assert.Equal(t, "Suzuki", bookings[1].Name)
	assert.Equal(t, "Tanaka", bookings[2].Name)

	seen := make(map[int64]bool)
	for _, b := range bookings {
		assert.False(t, seen[b.ID], "booking %d returned twice", b.ID)
		seen[b.ID] = true
	}
}

func TestSearchBookingsFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := testBooking("Tanaka")
	require.NoError(t, db.CreateBooking(ctx, first))
	second := testBooking("Suzuki")
	second.Location = "Nakameguro"
	require.NoError(t, db.CreateBooking(ctx, second))

	require.NoError(t, db.UpdateBookingStatus(ctx, first.ID, models.StatusConfirmed))

	byStatus, err := db.SearchBookings(ctx, models.SearchFilter{Status: models.StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, first.ID, byStatus[0].ID)

	byQuery, err := db.SearchBookings(ctx, models.SearchFilter{Query: "Nakameguro"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, second.ID, byQuery[0].ID)

	byRef, err := db.SearchBookings(ctx, models.SearchFilter{Query: first.Reference})
	require.NoError(t, err)
	require.Len(t, byRef, 1)

	today := time.Now().UTC()
	inRange, err := db.SearchBookings(ctx, models.SearchFilter{From: today, To: today})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	tomorrow := today.AddDate(0, 0, 1)
	empty, err := db.SearchBookings(ctx, models.SearchFilter{From: tomorrow})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCountBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, testBooking("Tanaka")))
	require.NoError(t, db.CreateBooking(ctx, testBooking("Suzuki")))

	count, err := db.CountBookings(ctx, models.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = db.CountBookings(ctx, models.SearchFilter{Status: models.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking("Tanaka")
	require.NoError(t, db.CreateBooking(ctx, booking))

	before, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusContacted))

	after, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, after.Status)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestUpdateBookingStatusErrors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.UpdateBookingStatus(ctx, 42, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := db.CountBookings(ctx, models.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count, "store must be unchanged")

	booking := testBooking("Tanaka")
	require.NoError(t, db.CreateBooking(ctx, booking))

	err = db.UpdateBookingStatus(ctx, booking.ID, "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
}

func TestUpdateBookingAdminNote(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking("Tanaka")
	require.NoError(t, db.CreateBooking(ctx, booking))

	require.NoError(t, db.UpdateBookingAdminNote(ctx, booking.ID, "call back after 18:00"))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "call back after 18:00", got.AdminNote)

	assert.ErrorIs(t, db.UpdateBookingAdminNote(ctx, 999, "x"), ErrNotFound)
}

func TestUpdateBookingContactKeepsEstimate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking("Tanaka")
	require.NoError(t, db.CreateBooking(ctx, booking))

	require.NoError(t, db.UpdateBookingContact(ctx, booking.ID, "Tanaka Ichiro", "tanaka@example.com", "090-1111-2222"))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tanaka Ichiro", got.Name)
	assert.Equal(t, "tanaka@example.com", got.Email)
	assert.Equal(t, booking.Estimate.Total, got.Estimate.Total)
	assert.Equal(t, booking.Options, got.Options)
}
