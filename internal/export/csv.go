// Package export renders booking listings for download from the admin panel.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"storecrew/internal/models"
)

// csvHeader is part of the download contract; downstream spreadsheets key on
// these column names.
var csvHeader = []string{"id", "name", "contact", "options", "estimate", "status", "created_at", "updated_at"}

// WriteCSV renders bookings in listing order, one row per booking.
func WriteCSV(w io.Writer, bookings []*models.Booking) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, b := range bookings {
		row := []string{
			strconv.FormatInt(b.ID, 10),
			b.Name,
			FormatContact(b),
			FormatOptions(b.Options),
			strconv.FormatInt(b.Estimate.Total, 10),
			b.Status,
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			b.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatContact joins phone and email into a single cell.
func FormatContact(b *models.Booking) string {
	if b.Email == "" {
		return b.Phone
	}
	return b.Phone + " / " + b.Email
}

// FormatOptions renders selected options as "id x qty" pairs in a stable
// order.
func FormatOptions(options map[string]int) string {
	if len(options) == 0 {
		return ""
	}

	ids := make([]string, 0, len(options))
	for id := range options {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s x%d", id, options[id]))
	}
	return strings.Join(parts, ", ")
}
