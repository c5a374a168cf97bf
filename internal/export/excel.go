package export

import (
	"fmt"
	"io"
	"strings"

	"storecrew/internal/models"

	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// WriteXLSX renders bookings as a spreadsheet with a richer column set than
// the CSV export: split contact fields, location, preferred date, modifiers
// and the admin note.
func WriteXLSX(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Reference", "Name", "Phone", "Email", "Service", "Location",
		"Preferred date", "Options", "Modifiers", "Estimate", "Currency",
		"Status", "Admin note", "Created", "Updated",
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.Reference,
			b.Name,
			b.Phone,
			b.Email,
			b.ServiceType,
			b.Location,
			b.PreferredDate,
			FormatOptions(b.Options),
			strings.Join(b.Modifiers, ", "),
			b.Estimate.Total,
			b.Estimate.Currency,
			b.Status,
			b.AdminNote,
			b.CreatedAt.UTC().Format("02.01.2006 15:04"),
			b.UpdatedAt.UTC().Format("02.01.2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(bookingsSheet, cell, value)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 8)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 38)
	_ = f.SetColWidth(bookingsSheet, "C", "H", 20)
	_ = f.SetColWidth(bookingsSheet, "I", "J", 25)
	_ = f.SetColWidth(bookingsSheet, "K", "N", 15)
	_ = f.SetColWidth(bookingsSheet, "O", "P", 18)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing xlsx: %v", err)
	}
	return nil
}
