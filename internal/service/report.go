package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportService builds attendance report spreadsheets.
type ReportService struct {
	attendance *AttendanceService
}

// NewReportService creates a report service.
func NewReportService(attendance *AttendanceService) *ReportService {
	return &ReportService{attendance: attendance}
}

var reportColumns = []string{
	"Username", "Date", "Type", "Morning", "Evening", "Status", "Field Images", "Reason",
}

// MonthlyAttendance renders one month ("2006-01") as an xlsx workbook.
func (s *ReportService) MonthlyAttendance(ctx context.Context, month string) (*bytes.Buffer, error) {
	records, err := s.attendance.ForMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("load attendance for %s: %w", month, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance " + month
	f.SetSheetName("Sheet1", sheet)

	for i, col := range reportColumns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, col)
	}

	for i, record := range records {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.Username)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), record.Date)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.Type)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatLeg(record.MorningTime))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), formatLeg(record.EveningTime))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), record.FieldImageFlag)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), record.Reason)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf, nil
}

func formatLeg(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
