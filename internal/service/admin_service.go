package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"storecrew/internal/domain"
	"storecrew/internal/export"
	"storecrew/internal/metrics"
	"storecrew/internal/models"

	"github.com/rs/zerolog"
)

// AdminService backs the authenticated panel: search, record updates and
// exports.
type AdminService struct {
	store   domain.Store
	syncer  domain.SyncEnqueuer
	catalog *models.Catalog
	logger  *zerolog.Logger
}

func NewAdminService(store domain.Store, syncer domain.SyncEnqueuer, catalog *models.Catalog, logger *zerolog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		syncer:  syncer,
		catalog: catalog,
		logger:  logger,
	}
}

// SearchResult pairs a page of bookings with the total match count.
type SearchResult struct {
	Bookings []*models.Booking `json:"bookings"`
	Total    int               `json:"total"`
}

func (s *AdminService) Search(ctx context.Context, filter models.SearchFilter) (*SearchResult, error) {
	bookings, err := s.store.SearchBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Bookings: bookings, Total: total}, nil
}

func (s *AdminService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// UpdateStatus sets a booking's status. The stored estimate is untouched:
// admin edits never trigger recalculation.
func (s *AdminService) UpdateStatus(ctx context.Context, id int64, status string) (*models.Booking, error) {
	status = strings.TrimSpace(status)
	if err := s.store.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, err
	}
	metrics.IncStatusUpdate(status)

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", id).Str("status", status).Msg("booking status updated")

	if s.syncer != nil {
		if err := s.syncer.EnqueueStatusUpdate(ctx, id, status); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", id).Msg("sheets enqueue error")
		}
	}

	return booking, nil
}

func (s *AdminService) UpdateNote(ctx context.Context, id int64, note string) (*models.Booking, error) {
	if err := s.store.UpdateBookingAdminNote(ctx, id, strings.TrimSpace(note)); err != nil {
		return nil, err
	}
	return s.store.GetBooking(ctx, id)
}

// ContactUpdate carries the editable contact fields. Validation mirrors the
// intake form rules for the same fields.
type ContactUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *AdminService) UpdateContact(ctx context.Context, id int64, update ContactUpdate) (*models.Booking, error) {
	verr := newValidationError()

	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(update.Email)
	update.Phone = strings.TrimSpace(update.Phone)

	if update.Name == "" {
		verr.add("name", "name is required")
	} else if len(update.Name) > maxNameLength {
		verr.add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	if update.Phone == "" {
		verr.add("phone", "phone is required")
	} else if !phoneRe.MatchString(update.Phone) {
		verr.add("phone", "phone must be 9-16 characters of digits, +, -, (), spaces")
	}
	if update.Email != "" {
		if len(update.Email) > maxEmailLength {
			verr.add("email", fmt.Sprintf("email must be at most %d characters", maxEmailLength))
		} else if !looksLikeEmail(update.Email) {
			verr.add("email", "email looks invalid")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBookingContact(ctx, id, update.Name, update.Email, update.Phone); err != nil {
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.syncer != nil {
		if err := s.syncer.EnqueueUpsert(ctx, booking); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", id).Msg("sheets enqueue error")
		}
	}

	return booking, nil
}

// ExportCSV streams the filtered bookings as CSV.
func (s *AdminService) ExportCSV(ctx context.Context, filter models.SearchFilter, w io.Writer) error {
	bookings, err := s.store.SearchBookings(ctx, filter)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, bookings)
}

// ExportXLSX streams the filtered bookings as a spreadsheet.
func (s *AdminService) ExportXLSX(ctx context.Context, filter models.SearchFilter, w io.Writer) error {
	bookings, err := s.store.SearchBookings(ctx, filter)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, bookings)
}
