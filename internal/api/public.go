package api

import (
	"net/http"
	"strings"
	"time"

	"storecrew/internal/estimate"
	"storecrew/internal/models"
	"storecrew/internal/service"
)

const intakeTokenHeader = "X-Intake-Token"

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCatalog exposes services, options and modifiers with prices so the
// form can render without a second round trip.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.intake.Catalog())
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		ServiceType string         `json:"service_type"`
		Options     map[string]int `json:"options"`
		Modifiers   []string       `json:"modifiers"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	est, err := s.intake.Estimate(estimate.Selection{
		ServiceType: body.ServiceType,
		Options:     body.Options,
		Modifiers:   body.Modifiers,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req service.IntakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.intake.Submit(r.Context(), &req, r.Header.Get(intakeTokenHeader))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// bookingConfirmation is the customer-facing view of a booking. Internal
// fields (numeric id, admin note) never leave the admin API.
type bookingConfirmation struct {
	Reference     string          `json:"reference"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	ServiceType   string          `json:"service_type"`
	Location      string          `json:"location"`
	PreferredDate string          `json:"preferred_date,omitempty"`
	Options       map[string]int  `json:"options"`
	Modifiers     []string        `json:"modifiers,omitempty"`
	Message       string          `json:"message,omitempty"`
	Estimate      models.Estimate `json:"estimate"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func confirmationView(b *models.Booking) bookingConfirmation {
	return bookingConfirmation{
		Reference:     b.Reference,
		Name:          b.Name,
		Phone:         b.Phone,
		Email:         b.Email,
		ServiceType:   b.ServiceType,
		Location:      b.Location,
		PreferredDate: b.PreferredDate,
		Options:       b.Options,
		Modifiers:     b.Modifiers,
		Message:       b.Message,
		Estimate:      b.Estimate,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}

// handleBookingByReference lets a customer check their booking by the opaque
// reference from the confirmation. Numeric ids are not accepted here.
func (s *Server) handleBookingByReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reference := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	reference = strings.TrimSpace(reference)
	if reference == "" || strings.Contains(reference, "/") {
		writeError(w, http.StatusBadRequest, "reference is required")
		return
	}

	booking, err := s.intake.GetByReference(r.Context(), reference)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmationView(booking))
}

func (s *Server) handleIntakeProgress(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleProgressGet(w, r)
	case http.MethodPut:
		s.handleProgressPut(w, r)
	case http.MethodDelete:
		s.handleProgressDelete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleProgressGet(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get(intakeTokenHeader))
	if token == "" {
		writeError(w, http.StatusBadRequest, "intake token is required")
		return
	}

	progress, err := s.intake.LoadProgress(r.Context(), token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if progress == nil {
		writeError(w, http.StatusNotFound, "no saved progress")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleProgressPut(w http.ResponseWriter, r *http.Request) {
	var progress models.IntakeProgress
	if err := decodeJSON(r, &progress); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Header token wins over a token in the body.
	if token := strings.TrimSpace(r.Header.Get(intakeTokenHeader)); token != "" {
		progress.Token = token
	}

	saved, err := s.intake.SaveProgress(r.Context(), &progress)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleProgressDelete(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get(intakeTokenHeader))
	if token == "" {
		writeError(w, http.StatusBadRequest, "intake token is required")
		return
	}

	if err := s.intake.ClearProgress(r.Context(), token); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
