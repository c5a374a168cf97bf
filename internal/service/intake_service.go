package service

import (
	"context"
	"fmt"
	"time"

	"storecrew/internal/domain"
	"storecrew/internal/estimate"
	"storecrew/internal/metrics"
	"storecrew/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IntakeService handles the public side: price estimates, draft progress and
// booking submission.
type IntakeService struct {
	store    domain.Store
	progress domain.ProgressRepository
	notifier domain.Notifier
	syncer   domain.SyncEnqueuer
	catalog  *models.Catalog
	logger   *zerolog.Logger
}

func NewIntakeService(store domain.Store, progress domain.ProgressRepository, notifier domain.Notifier, syncer domain.SyncEnqueuer, catalog *models.Catalog, logger *zerolog.Logger) *IntakeService {
	return &IntakeService{
		store:    store,
		progress: progress,
		notifier: notifier,
		syncer:   syncer,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *IntakeService) Catalog() *models.Catalog {
	return s.catalog
}

// Estimate prices a selection without persisting anything. Unknown catalog
// ids come back as *estimate.UnknownIDError.
func (s *IntakeService) Estimate(sel estimate.Selection) (models.Estimate, error) {
	est, err := estimate.Calculate(s.catalog, sel)
	if err != nil {
		return models.Estimate{}, err
	}
	metrics.IncEstimates()
	return est, nil
}

// Submit validates the form, recomputes the estimate server side and creates
// the booking. Client-supplied totals are never trusted. A non-empty token
// clears the matching draft after a successful create.
func (s *IntakeService) Submit(ctx context.Context, req *IntakeRequest, token string) (*models.Booking, error) {
	if err := ValidateIntake(req, s.catalog, time.Now().UTC()); err != nil {
		return nil, err
	}

	est, err := estimate.Calculate(s.catalog, estimate.Selection{
		ServiceType: req.ServiceType,
		Options:     req.Options,
		Modifiers:   req.Modifiers,
	})
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		ServiceType:   req.ServiceType,
		Location:      req.Location,
		PreferredDate: req.PreferredDate,
		Options:       req.Options,
		Modifiers:     req.Modifiers,
		Message:       req.Message,
		Estimate:      est,
		Status:        models.StatusNew,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	metrics.IncBookings()

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("reference", booking.Reference).
		Str("service_type", booking.ServiceType).
		Int64("estimate", est.Total).
		Msg("booking created")

	if s.syncer != nil {
		if err := s.syncer.EnqueueUpsert(ctx, booking); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
		}
	}

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking)
	}

	if token != "" {
		if err := s.progress.ClearProgress(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear intake progress")
		}
	}

	return booking, nil
}

// GetByReference looks up a booking by its public reference.
func (s *IntakeService) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return s.store.GetBookingByReference(ctx, reference)
}

// SaveProgress stores a draft form. A missing token gets a fresh one; the
// caller must echo it back on subsequent requests.
func (s *IntakeService) SaveProgress(ctx context.Context, progress *models.IntakeProgress) (*models.IntakeProgress, error) {
	if progress.Token == "" {
		progress.Token = uuid.NewString()
	}
	if progress.Step == "" {
		progress.Step = models.StepContact
	}
	if !isKnownStep(progress.Step) {
		verr := newValidationError()
		verr.add("step", "unknown step: "+progress.Step)
		return nil, verr
	}
	progress.UpdatedAt = time.Now().UTC()

	if err := s.progress.SetProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save intake progress: %w", err)
	}
	return progress, nil
}

func (s *IntakeService) LoadProgress(ctx context.Context, token string) (*models.IntakeProgress, error) {
	return s.progress.GetProgress(ctx, token)
}

func (s *IntakeService) ClearProgress(ctx context.Context, token string) error {
	return s.progress.ClearProgress(ctx, token)
}

func isKnownStep(step string) bool {
	for _, s := range models.StepSequence {
		if s == step {
			return true
		}
	}
	return false
}
