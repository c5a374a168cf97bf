package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storecrew/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `id, reference, name, email, phone, service_type, location,
                 preferred_date, options, modifiers, message,
                 est_total, est_currency, est_breakdown,
                 status, admin_note, created_at, updated_at`

// CreateBooking persists a new record atomically and fills in the assigned
// id, reference and timestamps. A failed insert leaves nothing behind.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Reference == "" {
		booking.Reference = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusNew
	}

	optionsJSON, err := encodeOptions(booking.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	modifiersJSON, err := encodeModifiers(booking.Modifiers)
	if err != nil {
		return fmt.Errorf("failed to encode modifiers: %w", err)
	}
	breakdownJSON, err := encodeBreakdown(booking.Estimate.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	query := `INSERT INTO bookings (
				reference, name, email, phone, service_type, location,
				preferred_date, options, modifiers, message,
				est_total, est_currency, est_breakdown,
				status, admin_note, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.Reference,
		booking.Name,
		booking.Email,
		booking.Phone,
		booking.ServiceType,
		booking.Location,
		booking.PreferredDate,
		optionsJSON,
		modifiersJSON,
		booking.Message,
		booking.Estimate.Total,
		booking.Estimate.Currency,
		breakdownJSON,
		booking.Status,
		booking.AdminNote,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.queryBooking(ctx, query, id)
}

func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return db.queryBooking(ctx, query, reference)
}

func (db *DB) queryBooking(ctx context.Context, query string, args ...interface{}) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, query, args...)
	booking, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// SearchBookings returns records matching the filter, newest first
// (created_at DESC, id DESC). An empty filter returns everything.
func (db *DB) SearchBookings(ctx context.Context, filter models.SearchFilter) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	where, args := buildFilter(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (db *DB) CountBookings(ctx context.Context, filter models.SearchFilter) (int, error) {
	query := `SELECT COUNT(*) FROM bookings`
	where, args := buildFilter(filter)
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	if !models.IsKnownStatus(status) {
		return ErrInvalidStatus
	}
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	return db.execExpectingRow(ctx, query, status, time.Now().UTC(), id)
}

func (db *DB) UpdateBookingAdminNote(ctx context.Context, id int64, note string) error {
	query := `UPDATE bookings SET admin_note = ?, updated_at = ? WHERE id = ?`
	return db.execExpectingRow(ctx, query, note, time.Now().UTC(), id)
}

// UpdateBookingContact corrects contact fields. Options and the stored
// estimate are deliberately untouched.
func (db *DB) UpdateBookingContact(ctx context.Context, id int64, name, email, phone string) error {
	query := `UPDATE bookings SET name = ?, email = ?, phone = ?, updated_at = ? WHERE id = ?`
	return db.execExpectingRow(ctx, query, name, email, phone, time.Now().UTC(), id)
}

func (db *DB) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func buildFilter(filter models.SearchFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "date(created_at) >= ?")
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "date(created_at) <= ?")
		args = append(args, filter.To.Format("2006-01-02"))
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		clauses = append(clauses, "(name LIKE ? OR phone LIKE ? OR location LIKE ? OR reference LIKE ?)")
		args = append(args, like, like, like, like)
	}

	return strings.Join(clauses, " AND "), args
}

func scanBooking(scan func(dest ...interface{}) error) (*models.Booking, error) {
	b := &models.Booking{}
	var (
		email         sql.NullString
		preferredDate sql.NullString
		message       sql.NullString
		adminNote     sql.NullString
		optionsJSON   string
		modifiersJSON string
		breakdownJSON string
	)

	err := scan(
		&b.ID, &b.Reference, &b.Name, &email, &b.Phone, &b.ServiceType, &b.Location,
		&preferredDate, &optionsJSON, &modifiersJSON, &message,
		&b.Estimate.Total, &b.Estimate.Currency, &breakdownJSON,
		&b.Status, &adminNote, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Email = email.String
	b.PreferredDate = preferredDate.String
	b.Message = message.String
	b.AdminNote = adminNote.String

	if err := json.Unmarshal([]byte(optionsJSON), &b.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := json.Unmarshal([]byte(modifiersJSON), &b.Modifiers); err != nil {
		return nil, fmt.Errorf("failed to decode modifiers: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &b.Estimate.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}

	return b, nil
}

func encodeOptions(options map[string]int) (string, error) {
	if options == nil {
		options = map[string]int{}
	}
	data, err := json.Marshal(options)
	return string(data), err
}

func encodeModifiers(modifiers []string) (string, error) {
	if modifiers == nil {
		modifiers = []string{}
	}
	data, err := json.Marshal(modifiers)
	return string(data), err
}

func encodeBreakdown(breakdown []models.EstimateLine) (string, error) {
	if breakdown == nil {
		breakdown = []models.EstimateLine{}
	}
	data, err := json.Marshal(breakdown)
	return string(data), err
}
