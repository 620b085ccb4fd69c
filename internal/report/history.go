// Package report renders patient history as XLSX workbooks.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the single sheet holding the history rows.
const SheetName = "History"

// HistoryHeader is the first row of the sheet.
var HistoryHeader = []string{
	"Timestamp",
	"Medication",
	"Action",
	"Actor",
	"Detail",
}

var columnWidths = []float64{20, 28, 22, 14, 90}

// HistoryWorkbook renders entries (already ordered) into an XLSX file.
// Timestamps are written in loc; nil means UTC.
func HistoryWorkbook(patient *domain.Patient, entries []domain.HistoryEntry, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("detail style: %w", err)
	}

	header := make([]interface{}, len(HistoryHeader))
	for i, h := range HistoryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(HistoryHeader), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			e.Timestamp.In(loc).Format("2006-01-02 15:04"),
			e.MedicationName,
			string(e.ActionKind),
			e.Actor,
			e.Detail,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
		detail, _ := excelize.CoordinatesToCellName(len(HistoryHeader), i+2)
		if err := f.SetCellStyle(SheetName, detail, detail, wrapStyle); err != nil {
			return nil, fmt.Errorf("detail style: %w", err)
		}
	}

	if patient != nil {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   "Medication history: " + patient.Name,
			Creator: "med-robot",
		}); err != nil {
			return nil, fmt.Errorf("doc props: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name used for a patient export.
func FileName(patientID string, now time.Time) string {
	return fmt.Sprintf("history-%s-%s.xlsx", patientID, now.UTC().Format("20060102"))
}
