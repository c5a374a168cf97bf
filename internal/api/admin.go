package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storecrew/internal/models"
	"storecrew/internal/service"
)

// parseSearchFilter reads the shared listing query parameters: status, from,
// to (both YYYY-MM-DD, inclusive) and q for free-text search.
func parseSearchFilter(r *http.Request) (models.SearchFilter, error) {
	var filter models.SearchFilter

	filter.Status = strings.TrimSpace(r.URL.Query().Get("status"))
	if filter.Status != "" && !models.IsKnownStatus(filter.Status) {
		return filter, fmt.Errorf("unknown status: %s", filter.Status)
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid from date; expected YYYY-MM-DD")
		}
		filter.From = from
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid to date; expected YYYY-MM-DD")
		}
		filter.To = to
	}

	filter.Query = strings.TrimSpace(r.URL.Query().Get("q"))
	return filter, nil
}

func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.admin.Search(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAdminBooking dispatches /api/v1/admin/bookings/{id} and the
// {id}/status, {id}/note and {id}/contact subresources.
func (s *Server) handleAdminBooking(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/bookings/")
	parts := strings.Split(rest, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.admin.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch parts[1] {
	case "status":
		s.handleUpdateStatus(w, r, id)
	case "note":
		s.handleUpdateNote(w, r, id)
	case "contact":
		s.handleUpdateContact(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.admin.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request, id int64) {
	var body struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.admin.UpdateNote(r.Context(), id, body.Note)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request, id int64) {
	var update service.ContactUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.admin.UpdateContact(r.Context(), id, update)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Build the file before writing headers so a failed search still
	// surfaces as a 500 instead of a truncated 200.
	var buf bytes.Buffer
	if err := s.admin.ExportCSV(r.Context(), filter, &buf); err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error().Err(err).Msg("csv export write failed")
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := s.admin.ExportXLSX(r.Context(), filter, &buf); err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error().Err(err).Msg("xlsx export write failed")
	}
}
