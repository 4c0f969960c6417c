package service

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"attendtrack/api/internal/model"
)

func TestMonthlyAttendance(t *testing.T) {
	db := newTestDB(t)
	attendance := NewAttendanceService(db, newTestFileStore(t), "10:00", "18:00")
	svc := NewReportService(attendance)
	ctx := context.Background()

	records := []model.Attendance{
		{Username: "alice", Date: "2024-03-04", Type: "Office", Status: model.StatusOnTime},
		{Username: "bob", Date: "2024-03-05", Type: "WFF", Status: model.StatusLateEntry},
		{Username: "carol", Date: "2024-04-01", Type: "Office", Status: model.StatusOnTime},
	}
	for i := range records {
		if err := db.Create(&records[i]).Error; err != nil {
			t.Fatalf("seed attendance: %v", err)
		}
	}

	buf, err := svc.MonthlyAttendance(ctx, "2024-03")
	if err != nil {
		t.Fatalf("MonthlyAttendance: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := "Attendance 2024-03"
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read sheet %q: %v", sheet, err)
	}

	// Header plus the two March rows; April must not leak in.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range reportColumns {
		if rows[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], want)
		}
	}
	if rows[1][0] != "alice" || rows[2][0] != "bob" {
		t.Errorf("data rows = %q, %q; want alice, bob", rows[1][0], rows[2][0])
	}
	if rows[2][2] != "WFF" {
		t.Errorf("type = %q, want WFF", rows[2][2])
	}
}

func TestMonthlyAttendance_EmptyMonth(t *testing.T) {
	attendance := NewAttendanceService(newTestDB(t), newTestFileStore(t), "10:00", "18:00")
	svc := NewReportService(attendance)

	buf, err := svc.MonthlyAttendance(context.Background(), "2030-01")
	if err != nil {
		t.Fatalf("MonthlyAttendance: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Attendance 2030-01")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
