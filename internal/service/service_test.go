package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"storecrew/internal/database"
	"storecrew/internal/estimate"
	"storecrew/internal/models"
	"storecrew/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	bookings []*models.Booking
}

func (n *fakeNotifier) BookingCreated(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, booking)
}

type fakeSyncer struct {
	mu       sync.Mutex
	upserts  []int64
	statuses []string
	fail     bool
}

func (s *fakeSyncer) EnqueueUpsert(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("queue full")
	}
	s.upserts = append(s.upserts, booking.ID)
	return nil
}

func (s *fakeSyncer) EnqueueStatusUpdate(ctx context.Context, bookingID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("queue full")
	}
	s.statuses = append(s.statuses, status)
	return nil
}

func setupIntake(t *testing.T) (*IntakeService, *database.DB, *fakeNotifier, *fakeSyncer) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifier := &fakeNotifier{}
	syncer := &fakeSyncer{}
	progress := repository.NewMemoryProgressRepository(time.Hour)
	svc := NewIntakeService(db, progress, notifier, syncer, testCatalog(), &logger)
	return svc, db, notifier, syncer
}

func TestIntakeSubmit(t *testing.T) {
	svc, db, notifier, syncer := setupIntake(t)
	ctx := context.Background()

	req := validRequest()
	req.Options = map[string]int{"photoreport": 1}
	req.Modifiers = []string{"weekend_visit", "repeat_client"}
	// Клиентская сумма игнорируется, сервер пересчитывает сам

	booking, err := svc.Submit(ctx, req, "")
	require.NoError(t, err)
	require.NotZero(t, booking.ID)
	require.NotEmpty(t, booking.Reference)
	assert.Equal(t, models.StatusNew, booking.Status)

	// 15000 + 1000 + 2500 = 18500, minus 10% = 16650
	assert.Equal(t, int64(16650), booking.Estimate.Total)
	assert.Equal(t, "JPY", booking.Estimate.Currency)

	stored, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Estimate.Total, stored.Estimate.Total)
	assert.Equal(t, booking.Reference, stored.Reference)

	require.Len(t, notifier.bookings, 1)
	assert.Equal(t, booking.ID, notifier.bookings[0].ID)
	assert.Equal(t, []int64{booking.ID}, syncer.upserts)
}

func TestIntakeSubmitValidationError(t *testing.T) {
	svc, db, notifier, _ := setupIntake(t)
	ctx := context.Background()

	req := validRequest()
	req.Phone = "bad"

	_, err := svc.Submit(ctx, req, "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	count, err := db.CountBookings(ctx, models.SearchFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, notifier.bookings)
}

func TestIntakeSubmitClearsProgress(t *testing.T) {
	svc, _, _, _ := setupIntake(t)
	ctx := context.Background()

	saved, err := svc.SaveProgress(ctx, &models.IntakeProgress{Step: models.StepConfirm, Name: "Tanaka Yui"})
	require.NoError(t, err)
	require.NotEmpty(t, saved.Token)

	_, err = svc.Submit(ctx, validRequest(), saved.Token)
	require.NoError(t, err)

	got, err := svc.LoadProgress(ctx, saved.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntakeSubmitSurvivesSyncFailure(t *testing.T) {
	svc, _, notifier, syncer := setupIntake(t)
	syncer.fail = true

	booking, err := svc.Submit(context.Background(), validRequest(), "")
	require.NoError(t, err)
	require.NotZero(t, booking.ID)
	require.Len(t, notifier.bookings, 1)
}

func TestIntakeEstimate(t *testing.T) {
	svc, _, _, _ := setupIntake(t)

	est, err := svc.Estimate(estimate.Selection{
		ServiceType: "fixture_install",
		Options:     map[string]int{"extra_staff": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(38000), est.Total)

	_, err = svc.Estimate(estimate.Selection{ServiceType: "nope"})
	var unknownErr *estimate.UnknownIDError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "service_type", unknownErr.Field)
}

func TestIntakeProgressRoundTrip(t *testing.T) {
	svc, _, _, _ := setupIntake(t)
	ctx := context.Background()

	saved, err := svc.SaveProgress(ctx, &models.IntakeProgress{
		Step:        models.StepOptions,
		Name:        "Tanaka Yui",
		Phone:       "+81 90-1234-5678",
		ServiceType: "storefront_cleaning",
		Options:     map[string]int{"photoreport": 1},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.Token)
	require.False(t, saved.UpdatedAt.IsZero())

	got, err := svc.LoadProgress(ctx, saved.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StepOptions, got.Step)
	assert.Equal(t, "Tanaka Yui", got.Name)

	require.NoError(t, svc.ClearProgress(ctx, saved.Token))
	got, err = svc.LoadProgress(ctx, saved.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntakeSaveProgressUnknownStep(t *testing.T) {
	svc, _, _, _ := setupIntake(t)

	_, err := svc.SaveProgress(context.Background(), &models.IntakeProgress{Step: "checkout"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestIntakeGetByReference(t *testing.T) {
	svc, _, _, _ := setupIntake(t)
	ctx := context.Background()

	booking, err := svc.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	got, err := svc.GetByReference(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetByReference(ctx, "nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func setupAdmin(t *testing.T) (*AdminService, *IntakeService, *fakeSyncer) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	syncer := &fakeSyncer{}
	progress := repository.NewMemoryProgressRepository(time.Hour)
	intake := NewIntakeService(db, progress, nil, syncer, testCatalog(), &logger)
	admin := NewAdminService(db, syncer, testCatalog(), &logger)
	return admin, intake, syncer
}

func TestAdminUpdateStatus(t *testing.T) {
	admin, intake, syncer := setupAdmin(t)
	ctx := context.Background()

	booking, err := intake.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	updated, err := admin.UpdateStatus(ctx, booking.ID, models.StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, updated.Status)
	assert.Equal(t, booking.Estimate.Total, updated.Estimate.Total)
	assert.Contains(t, syncer.statuses, models.StatusContacted)

	_, err = admin.UpdateStatus(ctx, booking.ID, "done")
	assert.ErrorIs(t, err, database.ErrInvalidStatus)

	_, err = admin.UpdateStatus(ctx, 9999, models.StatusContacted)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAdminUpdateNote(t *testing.T) {
	admin, intake, _ := setupAdmin(t)
	ctx := context.Background()

	booking, err := intake.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	updated, err := admin.UpdateNote(ctx, booking.ID, "  called, call back tomorrow ")
	require.NoError(t, err)
	assert.Equal(t, "called, call back tomorrow", updated.AdminNote)
}

func TestAdminUpdateContact(t *testing.T) {
	admin, intake, _ := setupAdmin(t)
	ctx := context.Background()

	booking, err := intake.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	updated, err := admin.UpdateContact(ctx, booking.ID, ContactUpdate{
		Name:  "Tanaka Yui",
		Email: "yui@example.com",
		Phone: "+81 90-1234-5678",
	})
	require.NoError(t, err)
	assert.Equal(t, "yui@example.com", updated.Email)
	assert.Equal(t, booking.Estimate.Total, updated.Estimate.Total)

	_, err = admin.UpdateContact(ctx, booking.ID, ContactUpdate{Name: "", Phone: "bad"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "phone")
}

func TestAdminSearch(t *testing.T) {
	admin, intake, _ := setupAdmin(t)
	ctx := context.Background()

	first, err := intake.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	second := validRequest()
	second.Name = "Suzuki Ken"
	second.ServiceType = "fixture_install"
	_, err = intake.Submit(ctx, second, "")
	require.NoError(t, err)

	_, err = admin.UpdateStatus(ctx, first.ID, models.StatusConfirmed)
	require.NoError(t, err)

	result, err := admin.Search(ctx, models.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Bookings, 2)

	result, err = admin.Search(ctx, models.SearchFilter{Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)

	result, err = admin.Search(ctx, models.SearchFilter{Query: "Suzuki"})
	require.NoError(t, err)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, "Suzuki Ken", result.Bookings[0].Name)
}

func TestAdminExportCSV(t *testing.T) {
	admin, intake, _ := setupAdmin(t)
	ctx := context.Background()

	_, err := intake.Submit(ctx, validRequest(), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, admin.ExportCSV(ctx, models.SearchFilter{}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Tanaka Yui", records[1][1])
}
