package export

import (
	"fmt"
	"io"
	"time"

	"nestflow/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	// ContentType of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Reservations"
)

var headers = []string{"ID", "Property", "Guest", "Guest email", "Check-in", "Check-out", "Nights", "Total", "Status", "Created"}

// FileName builds the attachment name for a host export.
func FileName(hostID int64, now time.Time) string {
	return fmt.Sprintf("reservations_host%d_%s.xlsx", hostID, now.UTC().Format("2006-01-02"))
}

// WriteHostReservations renders one row per reservation and writes the XLSX to w.
func WriteHostReservations(w io.Writer, reservations []*models.HostReservation, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	// Переименовываем стандартный лист
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}

	_ = f.SetCellValue(sheetName, "A1", "Reservations export "+generatedAt.UTC().Format("2006-01-02 15:04"))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	styles := statusStyles(f)
	for i, r := range reservations {
		row := i + 3
		nights := int(r.EndDate.Sub(r.StartDate.Time).Hours() / 24)
		values := []interface{}{
			r.ID,
			r.PropertyTitle,
			r.GuestName,
			r.GuestEmail,
			r.StartDate.String(),
			r.EndDate.String(),
			nights,
			r.TotalPrice,
			r.Status,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[r.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(9, row)
			_ = f.SetCellStyle(sheetName, cell, cell, style)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", lastCol, 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// statusStyles: зелёный подтверждено, жёлтый ожидает, красный отменено
func statusStyles(f *excelize.File) map[string]int {
	colors := map[string]string{
		models.StatusConfirmed: "#C6EFCE",
		models.StatusPending:   "#FFEB9C",
		models.StatusCancelled: "#FFC7CE",
	}
	styles := make(map[string]int, len(colors))
	for status, color := range colors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}
	return styles
}
